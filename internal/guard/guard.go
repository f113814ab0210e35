package guard

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/store"
)

// ConfigStore keys owned by the guard.
const (
	ConfigPanicWipe   = "guard.panic_wipe"
	ConfigMaxAttempts = "guard.max_attempts"
)

// Attempt limits accepted by SetMaxAttempts.
const (
	MinMaxAttempts = 3
	MaxMaxAttempts = 20
)

type State int

const (
	StateNoPin State = iota
	StateArmed
	StateWiped
)

func (s State) String() string {
	switch s {
	case StateNoPin:
		return "no-pin"
	case StateArmed:
		return "armed"
	case StateWiped:
		return "wiped"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of checking a PIN.
type Verdict struct {
	Valid          bool
	FailedAttempts int
	MaxAttempts    int
	// WipeRequired is set when this failure reached the limit with panic wipe enabled.
	WipeRequired bool
}

// Remaining returns how many failures are left before the limit.
func (v Verdict) Remaining() int {
	if r := v.MaxAttempts - v.FailedAttempts; r > 0 {
		return r
	}
	return 0
}

// Status is a point-in-time view of the guard.
type Status struct {
	State          State
	FailedAttempts int
	MaxAttempts    int
	PanicWipe      bool
	CreatedAt      time.Time
	Biometric      Capability
}

type Options struct {
	Secrets store.SecretStore
	Config  store.ConfigStore

	Params HashParams

	// DefaultMaxAttempts and DefaultPanicWipe apply until the user chooses otherwise.
	DefaultMaxAttempts int
	DefaultPanicWipe   bool

	// Biometric is optional.
	Biometric Biometric

	Logger logger.Logger
	Now    func() time.Time
}

type Guard struct {
	mu    sync.Mutex
	opts  Options
	wiped bool
}

func New(opts Options) *Guard {
	if opts.Params == (HashParams{}) {
		opts.Params = DefaultHashParams
	}
	if opts.DefaultMaxAttempts == 0 {
		opts.DefaultMaxAttempts = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Guard{opts: opts}
}

// SetPin validates candidate and replaces any existing record with a fresh
// one whose counter is zero. A rejected candidate leaves the store untouched.
func (g *Guard) SetPin(candidate string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return kerrors.ErrWiped
	}
	return g.setPinLocked(candidate)
}

func (g *Guard) setPinLocked(candidate string) error {
	if err := ValidateStrength(candidate); err != nil {
		return err
	}

	maxAttempts, err := g.maxAttemptsLocked()
	if err != nil {
		return err
	}

	record, err := newPinRecord(candidate, g.opts.Params, maxAttempts, g.opts.Now())
	if err != nil {
		return err
	}

	if err := g.saveLocked(record); err != nil {
		return err
	}

	g.opts.Logger.Debugf("PIN record written (max attempts %d)", maxAttempts)
	return nil
}

// Validate checks candidate against the stored hash and updates the counter.
// A mismatch is reported through Verdict, not as an error.
func (g *Guard) Validate(candidate string) (Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return Verdict{}, kerrors.ErrWiped
	}
	return g.validateLocked(candidate)
}

func (g *Guard) validateLocked(candidate string) (Verdict, error) {
	record, err := g.loadLocked()
	if err != nil {
		return Verdict{}, err
	}
	if record == nil {
		return Verdict{}, kerrors.ErrNoPin
	}

	computed := hashPin(candidate, record.Salt, record.params())
	match := subtle.ConstantTimeCompare(computed, record.Hash) == 1

	if match {
		if record.FailedAttempts != 0 {
			record.FailedAttempts = 0
			if err := g.saveLocked(record); err != nil {
				return Verdict{}, err
			}
		}
		return Verdict{Valid: true, MaxAttempts: record.MaxAttempts}, nil
	}

	record.FailedAttempts++
	if err := g.saveLocked(record); err != nil {
		return Verdict{}, err
	}

	panicWipe, err := g.panicWipeLocked()
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{
		FailedAttempts: record.FailedAttempts,
		MaxAttempts:    record.MaxAttempts,
		WipeRequired:   panicWipe && record.FailedAttempts >= record.MaxAttempts,
	}
	g.opts.Logger.Debugf("PIN mismatch: %d of %d attempts used", verdict.FailedAttempts, verdict.MaxAttempts)
	return verdict, nil
}

// ChangePin replaces the PIN after current validates. A failed check counts
// against the limit like any other and the returned Verdict says whether a
// wipe is now required.
func (g *Guard) ChangePin(current, next string) (Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return Verdict{}, kerrors.ErrWiped
	}

	verdict, err := g.validateLocked(current)
	if err != nil {
		return verdict, err
	}
	if !verdict.Valid {
		return verdict, kerrors.ErrAuthenticationFailed
	}

	if err := g.setPinLocked(next); err != nil {
		return verdict, err
	}
	return verdict, nil
}

// RemovePin deletes the record. Callers must authenticate first.
func (g *Guard) RemovePin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return kerrors.ErrWiped
	}
	if err := g.opts.Secrets.Delete(store.KeyPinRecord); err != nil {
		return fmt.Errorf("removing pin record: %w", err)
	}
	return nil
}

// Enabled reports whether a PIN record exists.
func (g *Guard) Enabled() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return false, nil
	}
	record, err := g.loadLocked()
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return StateWiped
	}
	record, err := g.loadLocked()
	if err != nil || record == nil {
		return StateNoPin
	}
	return StateArmed
}

func (g *Guard) Status() (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status := Status{State: StateNoPin, Biometric: g.capability()}
	if g.wiped {
		status.State = StateWiped
		return status, nil
	}

	panicWipe, err := g.panicWipeLocked()
	if err != nil {
		return status, err
	}
	status.PanicWipe = panicWipe

	maxAttempts, err := g.maxAttemptsLocked()
	if err != nil {
		return status, err
	}
	status.MaxAttempts = maxAttempts

	record, err := g.loadLocked()
	if err != nil {
		return status, err
	}
	if record != nil {
		status.State = StateArmed
		status.FailedAttempts = record.FailedAttempts
		status.MaxAttempts = record.MaxAttempts
		status.CreatedAt = record.Created()
	}
	return status, nil
}

// SetPanicWipe enables or disables wiping when the attempt limit is reached.
func (g *Guard) SetPanicWipe(enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return kerrors.ErrWiped
	}
	if err := g.opts.Config.Put(ConfigPanicWipe, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("saving panic wipe flag: %w", err)
	}
	return nil
}

// SetMaxAttempts stores a new limit and applies it to the current record.
func (g *Guard) SetMaxAttempts(n int) error {
	if n < MinMaxAttempts || n > MaxMaxAttempts {
		return fmt.Errorf("max attempts must be between %d and %d", MinMaxAttempts, MaxMaxAttempts)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return kerrors.ErrWiped
	}
	if err := g.opts.Config.Put(ConfigMaxAttempts, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("saving max attempts: %w", err)
	}

	record, err := g.loadLocked()
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	record.MaxAttempts = n
	return g.saveLocked(record)
}

// AuthenticateBiometric unlocks through the biometric delegate when one is
// available and a PIN is configured. Success resets the failed-attempt
// counter. The delegate is called without holding the guard lock.
func (g *Guard) AuthenticateBiometric(ctx context.Context, reason string) (bool, error) {
	if !g.capability().Available {
		return false, kerrors.ErrBiometricUnavailable
	}

	enabled, err := g.Enabled()
	if err != nil {
		return false, err
	}
	if !enabled {
		return false, kerrors.ErrNoPin
	}

	ok, err := g.opts.Biometric.Authenticate(ctx, reason)
	if err != nil {
		return false, fmt.Errorf("biometric authentication: %w", err)
	}
	if !ok {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.wiped {
		return false, kerrors.ErrWiped
	}
	record, err := g.loadLocked()
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, kerrors.ErrNoPin
	}
	if record.FailedAttempts != 0 {
		record.FailedAttempts = 0
		if err := g.saveLocked(record); err != nil {
			return false, err
		}
	}
	return true, nil
}

// MarkWiped moves the guard to its terminal state. It does not touch storage.
func (g *Guard) MarkWiped() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wiped = true
}

func (g *Guard) capability() Capability {
	if g.opts.Biometric == nil {
		return Capability{Kind: BiometricNone}
	}
	return g.opts.Biometric.CanAuthenticate()
}

func (g *Guard) loadLocked() (*PinRecord, error) {
	data, ok, err := g.opts.Secrets.Get(store.KeyPinRecord)
	if err != nil {
		return nil, fmt.Errorf("loading pin record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decoding pin record: %v: %w", err, kerrors.ErrStoreUnavailable)
	}
	return record, nil
}

func (g *Guard) saveLocked(record *PinRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encoding pin record: %w", err)
	}
	if err := g.opts.Secrets.Put(store.KeyPinRecord, data); err != nil {
		return fmt.Errorf("saving pin record: %w", err)
	}
	return nil
}

func (g *Guard) panicWipeLocked() (bool, error) {
	v, ok, err := g.opts.Config.Get(ConfigPanicWipe)
	if err != nil {
		return false, fmt.Errorf("loading panic wipe flag: %w", err)
	}
	if !ok {
		return g.opts.DefaultPanicWipe, nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return g.opts.DefaultPanicWipe, nil
	}
	return enabled, nil
}

func (g *Guard) maxAttemptsLocked() (int, error) {
	v, ok, err := g.opts.Config.Get(ConfigMaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("loading max attempts: %w", err)
	}
	if !ok {
		return g.opts.DefaultMaxAttempts, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < MinMaxAttempts || n > MaxMaxAttempts {
		return g.opts.DefaultMaxAttempts, nil
	}
	return n, nil
}
