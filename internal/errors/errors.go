package errors

import "errors"

// Credential errors indicate a rejected or unverifiable PIN.
var (
	// ErrWeakCredential indicates a candidate PIN failed the strength rules.
	ErrWeakCredential = errors.New("pin is too weak")

	// ErrAuthenticationFailed indicates the submitted PIN did not match.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNoPin indicates no PIN has been configured.
	ErrNoPin = errors.New("no pin configured")

	// ErrPinAlreadySet indicates a PIN exists and must be changed instead of set.
	ErrPinAlreadySet = errors.New("pin already configured")

	// ErrLocked indicates the operation needs an unlocked session.
	ErrLocked = errors.New("unlock required")

	// ErrBiometricUnavailable indicates no usable biometric delegate is present.
	ErrBiometricUnavailable = errors.New("biometric authentication unavailable")
)

// Wipe outcomes are committed results rather than failures.
var (
	// ErrWipeTriggered indicates the failed-attempt limit fired the panic wipe.
	ErrWipeTriggered = errors.New("panic wipe triggered")

	// ErrWiped indicates local data was destroyed and the guard is terminal.
	ErrWiped = errors.New("local data has been wiped")
)

// Transport errors indicate a privacy transport could not be used.
var (
	// ErrProxyUnavailable indicates the local onion-routing proxy is unreachable.
	ErrProxyUnavailable = errors.New("onion routing proxy unavailable")

	// ErrInvalidPrivacyMode indicates an unknown privacy mode name.
	ErrInvalidPrivacyMode = errors.New("invalid privacy mode")

	// ErrInvalidProvider indicates an unknown CDN provider name.
	ErrInvalidProvider = errors.New("invalid cdn provider")
)

// Data-integrity errors must fail closed and never return partial plaintext.
var (
	// ErrEncryptionKeyMissing indicates encryption is active but no key exists.
	ErrEncryptionKeyMissing = errors.New("encryption key missing")

	// ErrDecryptionFailed indicates a payload was tampered with or mis-keyed.
	ErrDecryptionFailed = errors.New("failed to decrypt payload")

	// ErrInvalidKeyLength indicates the symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")
)

// Infrastructure errors indicate secure storage could not be used.
var (
	// ErrStoreUnavailable indicates the secret or config store failed.
	ErrStoreUnavailable = errors.New("couldn't save or load securely")

	// ErrInvalidSettings indicates the settings file is malformed.
	ErrInvalidSettings = errors.New("settings are invalid")
)
