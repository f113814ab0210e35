package guard

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/store"
)

var testParams = HashParams{Time: 1, MemoryKiB: 64, Threads: 1}

func newTestGuard(t *testing.T, maxAttempts int, panicWipe bool) (*Guard, *store.MemorySecrets, *store.MemoryConfig) {
	t.Helper()
	secrets := store.NewMemorySecrets()
	config := store.NewMemoryConfig()
	g := New(Options{
		Secrets:            secrets,
		Config:             config,
		Params:             testParams,
		DefaultMaxAttempts: maxAttempts,
		DefaultPanicWipe:   panicWipe,
	})
	return g, secrets, config
}

func TestSetPinThenValidate(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)

	if g.State() != StateNoPin {
		t.Fatalf("Expected NoPin before SetPin, got %s", g.State())
	}

	for _, pin := range []string{"372915", "4829173", "58273916"} {
		if err := g.SetPin(pin); err != nil {
			t.Fatalf("SetPin(%q) failed: %v", pin, err)
		}
		verdict, err := g.Validate(pin)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !verdict.Valid {
			t.Errorf("Expected %q to validate", pin)
		}
	}

	if g.State() != StateArmed {
		t.Errorf("Expected Armed, got %s", g.State())
	}
}

func TestValidateResetsCounterAfterFailures(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		verdict, err := g.Validate("000001")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if verdict.Valid || verdict.FailedAttempts != i {
			t.Fatalf("Expected failure %d, got %+v", i, verdict)
		}
	}

	verdict, err := g.Validate("372915")
	if err != nil || !verdict.Valid {
		t.Fatalf("Expected valid PIN, got %+v err=%v", verdict, err)
	}

	status, err := g.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.FailedAttempts != 0 {
		t.Errorf("Expected counter reset to 0, got %d", status.FailedAttempts)
	}
}

func TestWipeRequiredExactlyAtLimit(t *testing.T) {
	g, _, _ := newTestGuard(t, 3, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	for i := 1; i < 3; i++ {
		verdict, _ := g.Validate("999998")
		if verdict.WipeRequired {
			t.Fatalf("Wipe required after only %d failures", i)
		}
		if verdict.Remaining() != 3-i {
			t.Errorf("Expected %d remaining, got %d", 3-i, verdict.Remaining())
		}
	}

	verdict, err := g.Validate("999998")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !verdict.WipeRequired {
		t.Errorf("Expected wipe required on failure 3, got %+v", verdict)
	}
}

func TestNoWipeWhenPanicWipeDisabled(t *testing.T) {
	g, _, _ := newTestGuard(t, 3, false)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		verdict, _ := g.Validate("999998")
		if verdict.WipeRequired {
			t.Fatalf("Wipe required with panic wipe disabled")
		}
	}
}

func TestPanicWipeFlagFromConfigStore(t *testing.T) {
	g, _, _ := newTestGuard(t, 3, false)
	if err := g.SetPanicWipe(true); err != nil {
		t.Fatalf("SetPanicWipe failed: %v", err)
	}
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	var verdict Verdict
	for i := 0; i < 3; i++ {
		verdict, _ = g.Validate("999998")
	}
	if !verdict.WipeRequired {
		t.Errorf("Expected stored panic wipe flag to apply")
	}
}

func TestSetPinRejectionLeavesStoreUntouched(t *testing.T) {
	g, secrets, _ := newTestGuard(t, 5, true)

	if err := g.SetPin("123456"); !errors.Is(err, kerrors.ErrWeakCredential) {
		t.Fatalf("Expected ErrWeakCredential, got %v", err)
	}
	if secrets.Len() != 0 {
		t.Errorf("Expected no secrets after rejected SetPin, got %d", secrets.Len())
	}

	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	before, _, _ := secrets.Get(store.KeyPinRecord)

	if err := g.SetPin("111111"); err == nil {
		t.Fatal("Expected weak PIN to be rejected")
	}
	after, _, _ := secrets.Get(store.KeyPinRecord)
	if !bytes.Equal(before, after) {
		t.Errorf("Rejected SetPin modified the stored record")
	}
}

func TestSetPinResetsCounter(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	_, _ = g.Validate("999998")
	_, _ = g.Validate("999998")

	if err := g.SetPin("4829173"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	status, _ := g.Status()
	if status.FailedAttempts != 0 {
		t.Errorf("Expected counter 0 after SetPin, got %d", status.FailedAttempts)
	}
}

func TestStoredRecordDoesNotContainPin(t *testing.T) {
	g, secrets, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("58273916"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	data, ok, _ := secrets.Get(store.KeyPinRecord)
	if !ok {
		t.Fatal("Expected a stored record")
	}
	if bytes.Contains(data, []byte("58273916")) {
		t.Errorf("Stored record contains the plaintext PIN")
	}
}

func TestValidateWithoutPin(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if _, err := g.Validate("372915"); !errors.Is(err, kerrors.ErrNoPin) {
		t.Errorf("Expected ErrNoPin, got %v", err)
	}
}

func TestChangePin(t *testing.T) {
	g, secrets, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	before, _, _ := secrets.Get(store.KeyPinRecord)

	if _, err := g.ChangePin("999998", "4829173"); !errors.Is(err, kerrors.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
	}
	if v, _ := g.Validate("372915"); !v.Valid {
		t.Fatalf("Old PIN must still work after failed change")
	}

	if _, err := g.ChangePin("372915", "222222"); !errors.Is(err, kerrors.ErrWeakCredential) {
		t.Fatalf("Expected ErrWeakCredential for weak new PIN, got %v", err)
	}

	if _, err := g.ChangePin("372915", "4829173"); err != nil {
		t.Fatalf("ChangePin failed: %v", err)
	}
	after, _, _ := secrets.Get(store.KeyPinRecord)
	if bytes.Equal(before, after) {
		t.Errorf("Expected record to change")
	}
	if v, _ := g.Validate("4829173"); !v.Valid {
		t.Errorf("New PIN should validate")
	}
	if v, _ := g.Validate("372915"); v.Valid {
		t.Errorf("Old PIN should no longer validate")
	}
}

func TestRemovePin(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	if err := g.RemovePin(); err != nil {
		t.Fatalf("RemovePin failed: %v", err)
	}

	enabled, err := g.Enabled()
	if err != nil || enabled {
		t.Errorf("Expected PIN protection disabled, got enabled=%t err=%v", enabled, err)
	}
	if g.State() != StateNoPin {
		t.Errorf("Expected NoPin, got %s", g.State())
	}
}

func TestSetMaxAttemptsUpdatesRecord(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	if err := g.SetMaxAttempts(2); err == nil {
		t.Errorf("Expected limit below minimum to be rejected")
	}
	if err := g.SetMaxAttempts(4); err != nil {
		t.Fatalf("SetMaxAttempts failed: %v", err)
	}

	status, _ := g.Status()
	if status.MaxAttempts != 4 {
		t.Errorf("Expected max attempts 4, got %d", status.MaxAttempts)
	}
}

func TestMarkWipedIsTerminal(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	g.MarkWiped()

	if g.State() != StateWiped {
		t.Errorf("Expected Wiped, got %s", g.State())
	}
	if _, err := g.Validate("372915"); !errors.Is(err, kerrors.ErrWiped) {
		t.Errorf("Expected ErrWiped from Validate, got %v", err)
	}
	if err := g.SetPin("4829173"); !errors.Is(err, kerrors.ErrWiped) {
		t.Errorf("Expected ErrWiped from SetPin, got %v", err)
	}
}

func TestConcurrentFailuresAreAllCounted(t *testing.T) {
	g, _, _ := newTestGuard(t, 20, false)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Validate("999998")
		}()
	}
	wg.Wait()

	status, _ := g.Status()
	if status.FailedAttempts != 10 {
		t.Errorf("Expected 10 counted failures, got %d", status.FailedAttempts)
	}
}

type fakeBiometric struct {
	capability Capability
	approve    bool
	calls      int
}

func (f *fakeBiometric) CanAuthenticate() Capability { return f.capability }

func (f *fakeBiometric) Authenticate(ctx context.Context, reason string) (bool, error) {
	f.calls++
	return f.approve, nil
}

func TestAuthenticateBiometric(t *testing.T) {
	bio := &fakeBiometric{capability: Capability{Available: true, Kind: BiometricFingerprint}, approve: true}
	g := New(Options{
		Secrets:   store.NewMemorySecrets(),
		Config:    store.NewMemoryConfig(),
		Params:    testParams,
		Biometric: bio,
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	})

	if _, err := g.AuthenticateBiometric(context.Background(), "unlock"); !errors.Is(err, kerrors.ErrNoPin) {
		t.Fatalf("Expected ErrNoPin without a PIN, got %v", err)
	}

	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	_, _ = g.Validate("999998")

	ok, err := g.AuthenticateBiometric(context.Background(), "unlock")
	if err != nil || !ok {
		t.Fatalf("Expected biometric success, got ok=%t err=%v", ok, err)
	}

	status, _ := g.Status()
	if status.FailedAttempts != 0 {
		t.Errorf("Expected counter reset after biometric success, got %d", status.FailedAttempts)
	}
	if !status.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Unexpected CreatedAt %v", status.CreatedAt)
	}
	if status.Biometric.Kind != BiometricFingerprint {
		t.Errorf("Expected fingerprint capability, got %q", status.Biometric.Kind)
	}
}

func TestAuthenticateBiometricWithoutDelegate(t *testing.T) {
	g, _, _ := newTestGuard(t, 5, true)
	if err := g.SetPin("372915"); err != nil {
		t.Fatalf("SetPin failed: %v", err)
	}
	if _, err := g.AuthenticateBiometric(context.Background(), "unlock"); !errors.Is(err, kerrors.ErrBiometricUnavailable) {
		t.Errorf("Expected ErrBiometricUnavailable, got %v", err)
	}
}
