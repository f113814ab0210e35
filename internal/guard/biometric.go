package guard

import "context"

type BiometricKind string

const (
	BiometricNone        BiometricKind = "none"
	BiometricFingerprint BiometricKind = "fingerprint"
	BiometricFace        BiometricKind = "face"
)

// Capability describes what the biometric delegate can do right now.
type Capability struct {
	Available bool
	Kind      BiometricKind
}

// Biometric is an optional platform delegate. The guard is fully usable
// with PIN only when no delegate is configured.
type Biometric interface {
	CanAuthenticate() Capability
	Authenticate(ctx context.Context, reason string) (bool, error)
}
