// Package guard implements the credential guard: PIN strength rules, the
// hashed PIN record, failed-attempt counting and the decision to fire the
// panic wipe.
//
// # State Machine
//
//	NoPin  --SetPin-->            Armed
//	Armed  --Validate ok-->       Armed (counter reset)
//	Armed  --Validate fail-->     Armed (counter incremented)
//	Armed  --fail at limit-->     Wiped (when panic wipe is enabled)
//	Armed  --RemovePin-->         NoPin
//
// The guard only reports that a wipe is required. Destroying data is the
// orchestrator's job; it calls MarkWiped once the wipe has started, after
// which every guard operation returns ErrWiped.
//
// # Storage
//
// The PinRecord is CBOR-encoded and stored whole under a single SecretStore
// key. Only the Argon2id hash and its salt persist; the PIN itself never
// does. The Argon2 parameters are stored alongside the hash so a settings
// change never locks out an existing PIN.
//
// All operations serialize on one mutex, so the record and its counter have
// a single writer.
package guard
