package workflows

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/store"
)

// ExecutePanicWipe destroys all local data. It is exclusive with every
// other operation and can only run once. Later calls return ErrWiped.
// Network requests in flight are cancelled first so the wipe does not wait
// out their timeouts.
func (o *Orchestrator) ExecutePanicWipe(ctx context.Context) error {
	o.cancelInflight()
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.isWiped() {
		return kerrors.ErrWiped
	}
	return o.wipeLocked(ctx)
}

// wipeLocked runs every wipe step in order, continuing past failures.
// The caller holds the write lock.
func (o *Orchestrator) wipeLocked(_ context.Context) error {
	o.sessionMu.Lock()
	o.wiped = true
	o.sessionMu.Unlock()

	var errs []error

	for _, key := range store.SecretKeys {
		if err := o.opts.Secrets.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}

	if err := o.opts.Config.RemoveAll(); err != nil {
		errs = append(errs, fmt.Errorf("clearing settings: %w", err))
	}

	if o.opts.Cache != nil {
		if err := o.opts.Cache.Purge(); err != nil {
			errs = append(errs, fmt.Errorf("purging cache: %w", err))
		}
	}

	if o.opts.Journal != nil {
		if err := o.opts.Journal.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("destroying journal: %w", err))
		}
	}

	o.lockSession()
	o.opts.Guard.MarkWiped()

	o.opts.Logger.Debugf("Panic wipe finished with %d errors", len(errs))

	if o.opts.Host != nil {
		o.opts.Host.Terminate()
	}

	return errors.Join(errs...)
}
