// Package workflows provides the safety orchestrator behind every refuge
// command.
//
// The Orchestrator owns the credential guard, the encryption manager, the
// network router and advisor, the payload cache, the security journal and
// both stores. The cmd/ package stays thin: it parses flags, calls one
// orchestrator method and formats the result.
//
// # Session State
//
// A session is unlocked when no PIN is configured or after a successful
// Unlock. History is recorded only while unlocked. QuickExit locks the
// session, drops incognito buffers and hands control to the Host.
//
// # Panic Wipe
//
// ExecutePanicWipe cancels network requests in flight, then takes the write
// side of the orchestrator's lock, so it waits for the remaining operations
// and blocks new ones. It deletes secrets
// first, then the ConfigStore, the payload cache, the journal and session
// state, and finally asks the Host to terminate. Every step runs even when
// an earlier one fails. Afterwards every method returns ErrWiped.
//
// # Error Handling
//
// Methods return sentinel errors from internal/errors. Use errors.Is():
//
//	res, err := o.Unlock(ctx, pin)
//	if errors.Is(err, kerrors.ErrAuthenticationFailed) {
//	    // res.Remaining attempts are left
//	}
package workflows
