package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/audit"
	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/guard"
)

// SetPin configures the first PIN. Use ChangePin when one already exists.
func (o *Orchestrator) SetPin(pin string) error {
	done, err := o.begin()
	if err != nil {
		return err
	}
	defer done()

	enabled, err := o.opts.Guard.Enabled()
	if err != nil {
		return err
	}
	if enabled {
		return kerrors.ErrPinAlreadySet
	}

	if err := o.opts.Guard.SetPin(pin); err != nil {
		return err
	}

	o.startSession()
	o.journal(audit.Entry{Event: audit.EventPinSet})
	return nil
}

// ChangePin replaces the PIN after verifying current. A wrong current PIN
// counts as a failed attempt and can trigger the panic wipe, in which case
// ErrWipeTriggered is returned.
func (o *Orchestrator) ChangePin(ctx context.Context, current, next string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.isWiped() {
		return kerrors.ErrWiped
	}

	verdict, err := o.opts.Guard.ChangePin(current, next)
	if verdict.WipeRequired {
		if werr := o.wipeLocked(ctx); werr != nil {
			return fmt.Errorf("%w: %w", kerrors.ErrWipeTriggered, werr)
		}
		return kerrors.ErrWipeTriggered
	}
	if err != nil {
		if !verdict.Valid && verdict.MaxAttempts > 0 {
			o.journal(audit.Entry{Event: audit.EventUnlockFailed, Remaining: verdict.Remaining()})
			return fmt.Errorf("%d attempts remaining: %w", verdict.Remaining(), err)
		}
		return err
	}

	o.journal(audit.Entry{Event: audit.EventPinChanged})
	return nil
}

// RemovePin turns PIN protection off. The session must be unlocked.
func (o *Orchestrator) RemovePin() error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	if err := o.opts.Guard.RemovePin(); err != nil {
		return err
	}
	o.journal(audit.Entry{Event: audit.EventPinRemoved})
	return nil
}

// GuardStatus reports the guard's state.
func (o *Orchestrator) GuardStatus() (guard.Status, error) {
	done, err := o.begin()
	if err != nil {
		return guard.Status{}, err
	}
	defer done()

	return o.opts.Guard.Status()
}

// SetPanicWipe enables or disables the wipe on reaching the attempt limit.
func (o *Orchestrator) SetPanicWipe(enabled bool) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	if err := o.opts.Guard.SetPanicWipe(enabled); err != nil {
		return err
	}
	o.journal(audit.Entry{Event: audit.EventPanicWipeSetting, Enabled: &enabled})
	return nil
}

// SetMaxAttempts changes the failed-attempt limit.
func (o *Orchestrator) SetMaxAttempts(n int) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Guard.SetMaxAttempts(n)
}
