package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/audit"
	kerrors "github.com/PolarWolf314/refuge/internal/errors"

	"github.com/google/uuid"
)

// UnlockResult contains the outcome of an unlock attempt.
type UnlockResult struct {
	// Unlocked is true when the session is now unlocked.
	Unlocked bool

	// PinRequired is false when no PIN is configured.
	PinRequired bool

	// Remaining is the number of attempts left before the limit.
	Remaining int

	// Wiped is true when this attempt reached the limit and the panic wipe ran.
	Wiped bool

	// SessionID identifies the unlocked session.
	SessionID string
}

// Unlock checks pin and unlocks the session. A wrong PIN returns
// ErrAuthenticationFailed together with the remaining attempts. When the
// failure reaches the limit with panic wipe enabled, the wipe runs before
// Unlock returns and the result reports Wiped.
func (o *Orchestrator) Unlock(ctx context.Context, pin string) (*UnlockResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.isWiped() {
		return nil, kerrors.ErrWiped
	}

	enabled, err := o.opts.Guard.Enabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		id := o.startSession()
		return &UnlockResult{Unlocked: true, SessionID: id}, nil
	}

	verdict, err := o.opts.Guard.Validate(pin)
	if err != nil {
		return nil, err
	}

	if verdict.Valid {
		id := o.startSession()
		o.journal(audit.Entry{Event: audit.EventUnlock})
		return &UnlockResult{Unlocked: true, PinRequired: true, Remaining: verdict.MaxAttempts, SessionID: id}, nil
	}

	if verdict.WipeRequired {
		o.opts.Logger.Debugf("Attempt limit reached, wiping local data")
		res := &UnlockResult{PinRequired: true, Wiped: true}
		if err := o.wipeLocked(ctx); err != nil {
			return res, fmt.Errorf("%w: %w", kerrors.ErrWipeTriggered, err)
		}
		return res, nil
	}

	o.journal(audit.Entry{Event: audit.EventUnlockFailed, Remaining: verdict.Remaining()})
	return &UnlockResult{PinRequired: true, Remaining: verdict.Remaining()},
		fmt.Errorf("%d attempts remaining: %w", verdict.Remaining(), kerrors.ErrAuthenticationFailed)
}

// UnlockBiometric unlocks through the guard's biometric delegate.
func (o *Orchestrator) UnlockBiometric(ctx context.Context, reason string) (*UnlockResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.isWiped() {
		return nil, kerrors.ErrWiped
	}

	ok, err := o.opts.Guard.AuthenticateBiometric(ctx, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &UnlockResult{PinRequired: true}, kerrors.ErrAuthenticationFailed
	}

	id := o.startSession()
	o.journal(audit.Entry{Event: audit.EventBiometricUnlock})
	return &UnlockResult{Unlocked: true, PinRequired: true, SessionID: id}, nil
}

func (o *Orchestrator) startSession() string {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	o.unlocked = true
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}
	return o.sessionID
}

// lockSession ends the session and drops incognito buffers.
func (o *Orchestrator) lockSession() {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	o.unlocked = false
	o.incognito = false
	o.sessionID = ""
	o.incognitoRecent = nil
	o.incognitoSearch = nil
}
