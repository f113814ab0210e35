// Package errors provides typed error values for the refuge guard.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Credential errors: PIN strength and authentication (ErrWeakCredential,
//     ErrAuthenticationFailed, ErrNoPin)
//   - Wipe outcomes: the panic wipe has fired (ErrWipeTriggered, ErrWiped)
//   - Transport errors: privacy transports that could not be reached
//     (ErrProxyUnavailable)
//   - Data-integrity errors: encryption key and payload failures
//     (ErrEncryptionKeyMissing, ErrDecryptionFailed)
//   - Infrastructure errors: secure storage could not be read or written
//     (ErrStoreUnavailable)
//
// # Blocking Errors
//
// Only wipe outcomes and ErrStoreUnavailable are shown to the user as
// blocking. Transport degradations step down to the next available
// transport and surface as a status line instead.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("loading pin record: %w", errors.ErrStoreUnavailable)
//
// Handle errors in the CLI layer:
//
//	result, err := orchestrator.Unlock(ctx, pin)
//	if errors.Is(err, kerrors.ErrAuthenticationFailed) {
//	    // Show remaining attempts
//	}
package errors
