package store

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func exerciseSecretStore(t *testing.T, s SecretStore) {
	t.Helper()

	if _, ok, err := s.Get(KeyPinRecord); err != nil || ok {
		t.Fatalf("Expected empty store, got ok=%t err=%v", ok, err)
	}

	if err := s.Put(KeyPinRecord, []byte("record-v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(KeyPinRecord, []byte("record-v2")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(KeyPinRecord)
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%t err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte("record-v2")) {
		t.Errorf("Expected record-v2, got %q", got)
	}

	// Mutating the returned slice must not change the stored value.
	got[0] = 'X'
	again, _, _ := s.Get(KeyPinRecord)
	if again[0] != 'r' {
		t.Errorf("Stored value was aliased by caller mutation")
	}

	if err := s.Delete(KeyPinRecord); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(KeyPinRecord); ok {
		t.Errorf("Expected key to be gone after Delete")
	}

	if err := s.Delete("never-written"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func exerciseConfigStore(t *testing.T, s ConfigStore) {
	t.Helper()

	if err := s.Put("privacy.mode", "tor"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("guard.panic_wipe", "true"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	v, ok, err := s.Get("privacy.mode")
	if err != nil || !ok || v != "tor" {
		t.Fatalf("Expected tor, got %q ok=%t err=%v", v, ok, err)
	}

	if err := s.Delete("privacy.mode"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("privacy.mode"); ok {
		t.Errorf("Expected privacy.mode to be deleted")
	}

	if err := s.RemoveAll(); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, ok, _ := s.Get("guard.panic_wipe"); ok {
		t.Errorf("Expected RemoveAll to clear every key")
	}
}

func TestMemorySecrets(t *testing.T) {
	exerciseSecretStore(t, NewMemorySecrets())
}

func TestMemoryConfig(t *testing.T) {
	exerciseConfigStore(t, NewMemoryConfig())
}

func TestBoltSecrets(t *testing.T) {
	s, err := OpenBoltSecrets(filepath.Join(t.TempDir(), "nested", "secrets.db"))
	if err != nil {
		t.Fatalf("OpenBoltSecrets failed: %v", err)
	}
	defer s.Close()

	exerciseSecretStore(t, s)
}

func TestBoltSecretsPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.db")

	s, err := OpenBoltSecrets(path)
	if err != nil {
		t.Fatalf("OpenBoltSecrets failed: %v", err)
	}
	if err := s.Put(KeyEncryptionKey, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}

	s, err = OpenBoltSecrets(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(KeyEncryptionKey)
	if err != nil || !ok || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Expected persisted key, got %v ok=%t err=%v", got, ok, err)
	}
}

func TestFileConfig(t *testing.T) {
	s, err := OpenFileConfig(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatalf("OpenFileConfig failed: %v", err)
	}
	exerciseConfigStore(t, s)
}

func TestFileConfigPersistsAndRemoveAllDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")

	s, err := OpenFileConfig(path)
	if err != nil {
		t.Fatalf("OpenFileConfig failed: %v", err)
	}
	if err := s.Put("network.trusted", `["home-5g"]`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reopened, err := OpenFileConfig(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	v, ok, _ := reopened.Get("network.trusted")
	if !ok || v != `["home-5g"]` {
		t.Errorf("Expected persisted value, got %q ok=%t", v, ok)
	}

	if err := reopened.RemoveAll(); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected state file to be removed, stat err=%v", err)
	}
}

func TestFileConfigCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("values = [not toml"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := OpenFileConfig(path); err == nil {
		t.Fatal("Expected error for corrupt state file")
	}
}

func TestMemoryConfigConcurrentWriters(t *testing.T) {
	s := NewMemoryConfig()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put("counter", "x")
			_, _, _ = s.Get("counter")
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", s.Len())
	}
}
