package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWipeCommand(t *testing.T) {
	t.Run("Cancelled", testWipeCancelled)
	t.Run("Confirmed", testWipeConfirmed)
}

func testWipeCancelled(t *testing.T) {
	paths := setupTestEnvironment(t)

	if _, err := runCLI(t, "clinic hours\n", "cache", "put", "clinics"); err != nil {
		t.Fatalf("cache put failed: %v", err)
	}

	output, err := runCLI(t, "no\n", "wipe")
	if err != nil {
		t.Fatalf("wipe failed: %v", err)
	}
	if !strings.Contains(output, "cancelled") {
		t.Errorf("Expected cancellation, got: %s", output)
	}
	if _, err := os.Stat(filepath.Join(paths.CacheDir, "clinics.bin")); err != nil {
		t.Errorf("Expected cached entry to survive: %v", err)
	}
}

func testWipeConfirmed(t *testing.T) {
	paths := setupTestEnvironment(t)

	if _, err := runCLI(t, testPin+"\n", "pin", "set"); err != nil {
		t.Fatalf("pin set failed: %v", err)
	}
	if _, err := runCLI(t, testPin+"\nclinic hours\n", "cache", "put", "clinics"); err != nil {
		t.Fatalf("cache put failed: %v", err)
	}

	// No PIN is needed to wipe.
	output, err := runCLI(t, "wipe\n", "wipe")
	if err != nil {
		t.Fatalf("wipe failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "erased") {
		t.Errorf("Expected wipe confirmation, got: %s", output)
	}

	for _, path := range []string{paths.SecretsDB, paths.StateFile, paths.CacheDir, paths.JournalFile} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be gone, got %v", filepath.Base(path), err)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	paths := setupTestEnvironment(t)

	if _, err := runCLI(t, "", "encryption", "enable"); err != nil {
		t.Fatalf("encryption enable failed: %v", err)
	}

	input := filepath.Join(t.TempDir(), "food.txt")
	if err := os.WriteFile(input, []byte("food bank on 5th street"), 0600); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	if _, err := runCLI(t, "", "cache", "put", "food", input); err != nil {
		t.Fatalf("cache put failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(paths.CacheDir, "food.bin"))
	if err != nil {
		t.Fatalf("Failed to read cache file: %v", err)
	}
	if strings.Contains(string(raw), "food bank") {
		t.Errorf("Cached entry is readable on disk")
	}

	output, err := runCLI(t, "", "cache", "get", "food")
	if err != nil {
		t.Fatalf("cache get failed: %v", err)
	}
	if !strings.Contains(output, "food bank on 5th street") {
		t.Errorf("Expected saved content, got: %s", output)
	}

	output, _ = runCLI(t, "", "cache", "get", "missing")
	if !strings.Contains(output, "Nothing saved") {
		t.Errorf("Expected missing message, got: %s", output)
	}
}
