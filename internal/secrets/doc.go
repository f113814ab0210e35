// Package secrets provides the encryption manager for locally stored data.
//
// # Key Lifecycle
//
// A single random 256-bit key is created the first time encryption is
// enabled and kept in the SecretStore under "encryption_key". Disabling
// encryption clears the enabled flag in the ConfigStore but keeps the key so
// previously sealed payloads stay readable. The key is only destroyed by
// the panic wipe.
//
// # Envelope Format
//
// Sealed payloads use NaCl secretbox (XSalsa20-Poly1305):
//
//	magic (4 bytes) || nonce (24 bytes) || secretbox output
//
// The magic marks the payload as sealed so plain payloads written before
// encryption was enabled can be told apart. A fresh random nonce is drawn
// for every call, so sealing the same plaintext twice yields different
// output.
//
// # Failure Behavior
//
// Decryption fails closed: a tampered, truncated or mis-keyed payload returns
// ErrDecryptionFailed and never partial plaintext.
package secrets
