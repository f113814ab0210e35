package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
)

const testPin = "372915"

// TestPinCommands contains integration tests for the `refuge pin` commands.
func TestPinCommands(t *testing.T) {
	t.Run("SetPinAndShowStatus", testSetPinAndShowStatus)
	t.Run("SetPinRejectsWeakPin", testSetPinRejectsWeakPin)
	t.Run("SetPinTwice", testSetPinTwice)
	t.Run("ChangePin", testChangePin)
	t.Run("RemovePinNeedsCurrentPin", testRemovePinNeedsCurrentPin)
	t.Run("MaxAttemptsRejectsOutOfRange", testMaxAttemptsRejectsOutOfRange)
}

func testSetPinAndShowStatus(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, testPin+"\n", "pin", "set")
	if err != nil {
		t.Fatalf("pin set failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "PIN set") {
		t.Errorf("Expected confirmation, got: %s", output)
	}

	output, err = runCLI(t, "", "pin", "status", "--json")
	if err != nil {
		t.Fatalf("pin status failed: %v", err)
	}

	var status PinStatusResult
	if err := json.Unmarshal([]byte(output), &status); err != nil {
		t.Fatalf("Failed to parse status JSON: %v\nOutput: %s", err, output)
	}
	if status.State != "armed" || status.MaxAttempts != 3 || status.FailedAttempts != 0 {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.CreatedAt == "" {
		t.Errorf("Expected creation time in status")
	}
}

func testSetPinRejectsWeakPin(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "123456\n", "pin", "set")
	if !errors.Is(err, kerrors.ErrWeakCredential) {
		t.Fatalf("Expected ErrWeakCredential, got %v", err)
	}
	if !strings.Contains(output, "too easy to guess") {
		t.Errorf("Expected weak PIN message, got: %s", output)
	}
}

func testSetPinTwice(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, testPin+"\n", "pin", "set"); err != nil {
		t.Fatalf("pin set failed: %v", err)
	}
	output, err := runCLI(t, "4829173\n", "pin", "set")
	if err != nil {
		t.Fatalf("Expected second set to report, not fail: %v", err)
	}
	if !strings.Contains(output, "already set") {
		t.Errorf("Expected already-set message, got: %s", output)
	}
}

func testChangePin(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, testPin+"\n", "pin", "set"); err != nil {
		t.Fatalf("pin set failed: %v", err)
	}

	output, err := runCLI(t, "999998\n4829173\n", "pin", "change")
	if !errors.Is(err, kerrors.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, testPin+"\n4829173\n", "pin", "change")
	if err != nil {
		t.Fatalf("pin change failed: %v\nOutput: %s", err, output)
	}

	if _, err := runCLI(t, "4829173\n", "unlock"); err != nil {
		t.Errorf("Expected new PIN to unlock: %v", err)
	}
}

func testRemovePinNeedsCurrentPin(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, testPin+"\n", "pin", "set"); err != nil {
		t.Fatalf("pin set failed: %v", err)
	}

	if _, err := runCLI(t, "999998\n", "pin", "remove"); !errors.Is(err, kerrors.ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
	}

	output, err := runCLI(t, testPin+"\n", "pin", "remove")
	if err != nil {
		t.Fatalf("pin remove failed: %v", err)
	}
	if !strings.Contains(output, "PIN removed") {
		t.Errorf("Expected confirmation, got: %s", output)
	}

	output, _ = runCLI(t, "", "unlock")
	if !strings.Contains(output, "No PIN is set") {
		t.Errorf("Expected no PIN after removal, got: %s", output)
	}
}

func testMaxAttemptsRejectsOutOfRange(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "", "pin", "max-attempts", "1"); err == nil {
		t.Errorf("Expected error for a limit below the minimum")
	}
	if _, err := runCLI(t, "", "pin", "max-attempts", "many"); err == nil {
		t.Errorf("Expected error for a non-numeric limit")
	}
	if _, err := runCLI(t, "", "pin", "max-attempts", "4"); err != nil {
		t.Errorf("Expected limit of 4 to be accepted without a PIN: %v", err)
	}
}

// TestPanicWipeFromCLI checks that the third wrong PIN erases every store.
func TestPanicWipeFromCLI(t *testing.T) {
	paths := setupTestEnvironment(t)

	if _, err := runCLI(t, testPin+"\n", "pin", "set"); err != nil {
		t.Fatalf("pin set failed: %v", err)
	}
	if _, err := runCLI(t, testPin+"\n", "pin", "panic-wipe", "on"); err != nil {
		t.Fatalf("pin panic-wipe failed: %v", err)
	}
	if _, err := runCLI(t, testPin+"\n", "encryption", "enable"); err != nil {
		t.Fatalf("encryption enable failed: %v", err)
	}
	if _, err := runCLI(t, testPin+"\nshelter list\n", "cache", "put", "shelters"); err != nil {
		t.Fatalf("cache put failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		output, err := runCLI(t, "999998\n", "unlock")
		if !errors.Is(err, kerrors.ErrAuthenticationFailed) {
			t.Fatalf("Attempt %d: expected ErrAuthenticationFailed, got %v", i+1, err)
		}
		if !strings.Contains(output, "Incorrect PIN") {
			t.Errorf("Attempt %d: expected failure message, got: %s", i+1, output)
		}
	}

	output, err := runCLI(t, "999998\n", "unlock")
	if !errors.Is(err, errWipedNow) {
		t.Fatalf("Expected wipe on third attempt, got %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "erased") {
		t.Errorf("Expected wipe message, got: %s", output)
	}

	for _, path := range []string{paths.SecretsDB, paths.StateFile, paths.CacheDir, paths.JournalFile} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be gone, got %v", filepath.Base(path), err)
		}
	}

	// A fresh start has no PIN and no saved data.
	output, _ = runCLI(t, "", "unlock")
	if !strings.Contains(output, "No PIN is set") {
		t.Errorf("Expected no PIN after wipe, got: %s", output)
	}
}
