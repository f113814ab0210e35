package workflows

import (
	"context"
	"fmt"
	"sync"

	"github.com/PolarWolf314/refuge/internal/advisor"
	"github.com/PolarWolf314/refuge/internal/audit"
	"github.com/PolarWolf314/refuge/internal/cache"
	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/guard"
	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/network"
	"github.com/PolarWolf314/refuge/internal/secrets"
	"github.com/PolarWolf314/refuge/internal/store"
)

// Host is the surface the orchestrator drives on quick exit and wipe.
type Host interface {
	// Background hides the app from view.
	Background() error
	// OpenURL shows a harmless page after a quick exit.
	OpenURL(ctx context.Context, url string) error
	// Terminate ends the process after a panic wipe.
	Terminate()
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Guard      *guard.Guard
	Encryption *secrets.Manager
	Router     *network.Router
	Advisor    *advisor.Advisor
	Cache      *cache.Cache
	Journal    *audit.Journal

	Secrets store.SecretStore
	Config  store.ConfigStore

	Host Host

	// CoverURL is opened after a quick exit. Empty skips navigation.
	CoverURL string

	// HistoryLimit caps each persisted history list. Zero means 25.
	HistoryLimit int

	Logger logger.Logger
}

type Orchestrator struct {
	// mu is held for reading by ordinary operations and for writing by
	// Unlock, the encryption toggle and the panic wipe.
	mu   sync.RWMutex
	opts Options

	// historyMu serializes read-modify-write of the persisted history.
	historyMu sync.Mutex

	// inflight is the parent of every network round-trip. The panic wipe
	// cancels it before waiting for the write lock.
	inflight       context.Context
	cancelInflight context.CancelFunc

	// Session state, guarded by sessionMu. Readers of mu may mutate it.
	sessionMu       sync.Mutex
	wiped           bool
	unlocked        bool
	incognito       bool
	sessionID       string
	incognitoRecent []string
	incognitoSearch []string
}

// New builds an orchestrator. The session starts unlocked only when no PIN
// is configured.
func New(opts Options) (*Orchestrator, error) {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}

	enabled, err := opts.Guard.Enabled()
	if err != nil {
		return nil, fmt.Errorf("checking pin state: %w", err)
	}

	inflight, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		opts:           opts,
		unlocked:       !enabled,
		inflight:       inflight,
		cancelInflight: cancel,
	}, nil
}

// begin takes the read lock and fails once the orchestrator is wiped.
func (o *Orchestrator) begin() (func(), error) {
	o.mu.RLock()
	if o.isWiped() {
		o.mu.RUnlock()
		return nil, kerrors.ErrWiped
	}
	return o.mu.RUnlock, nil
}

// beginUnlocked is begin plus a check that the session is unlocked.
func (o *Orchestrator) beginUnlocked() (func(), error) {
	done, err := o.begin()
	if err != nil {
		return nil, err
	}
	if !o.isUnlocked() {
		done()
		return nil, kerrors.ErrLocked
	}
	return done, nil
}

// beginExclusive takes the write lock for operations that rewrite stored
// data as a whole. It needs an unlocked session.
func (o *Orchestrator) beginExclusive() (func(), error) {
	o.mu.Lock()
	if o.isWiped() {
		o.mu.Unlock()
		return nil, kerrors.ErrWiped
	}
	if !o.isUnlocked() {
		o.mu.Unlock()
		return nil, kerrors.ErrLocked
	}
	return o.mu.Unlock, nil
}

// inflightContext derives a context for a network round-trip that is cancelled
// when either ctx ends or a panic wipe starts.
func (o *Orchestrator) inflightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(o.inflight, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (o *Orchestrator) isWiped() bool {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	return o.wiped
}

func (o *Orchestrator) isUnlocked() bool {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	return o.unlocked
}

// Wiped reports whether the panic wipe has run.
func (o *Orchestrator) Wiped() bool {
	return o.isWiped()
}

// Unlocked reports whether the session is unlocked.
func (o *Orchestrator) Unlocked() bool {
	return o.isUnlocked()
}

// SessionID returns the current session id, empty when locked.
func (o *Orchestrator) SessionID() string {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	return o.sessionID
}

// journal records an event unless an incognito session is active.
func (o *Orchestrator) journal(entry audit.Entry) {
	o.sessionMu.Lock()
	incognito := o.incognito
	entry.Session = o.sessionID
	o.sessionMu.Unlock()

	if incognito || o.opts.Journal == nil {
		return
	}
	o.opts.Journal.Log(entry)
}
