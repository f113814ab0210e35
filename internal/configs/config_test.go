package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.Guard.MaxFailedAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", settings.Guard.MaxFailedAttempts)
	}
	if settings.Network.TorSOCKSAddr != "127.0.0.1:9050" {
		t.Errorf("Expected default SOCKS addr, got %q", settings.Network.TorSOCKSAddr)
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestLoadSettingsOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `
[guard]
max_failed_attempts = 3
panic_wipe = true

[network]
tor_socks_addr = "127.0.0.1:9150"
local_probe_timeout = "2s"
tor_strict = true

[network.providers.fastly]
reflector_url = "https://mirror.example.net"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if settings.Guard.MaxFailedAttempts != 3 || !settings.Guard.PanicWipe {
		t.Errorf("Guard settings not applied: %+v", settings.Guard)
	}
	if settings.Network.TorSOCKSAddr != "127.0.0.1:9150" {
		t.Errorf("Expected overridden SOCKS addr, got %q", settings.Network.TorSOCKSAddr)
	}
	if settings.Network.LocalProbeTimeout != 2*time.Second {
		t.Errorf("Expected 2s probe timeout, got %v", settings.Network.LocalProbeTimeout)
	}
	if !settings.Network.TorStrict {
		t.Errorf("Expected tor_strict to be set")
	}
	if got := settings.Network.Providers["fastly"].ReflectorURL; got != "https://mirror.example.net" {
		t.Errorf("Expected provider override, got %q", got)
	}
	// Untouched fields keep their defaults.
	if settings.Network.RemoteProbeTimeout != 8*time.Second {
		t.Errorf("Expected default remote timeout, got %v", settings.Network.RemoteProbeTimeout)
	}
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"attempts too low", "[guard]\nmax_failed_attempts = 1\n"},
		{"attempts too high", "[guard]\nmax_failed_attempts = 99\n"},
		{"zero argon2 memory", "[guard]\nargon2_memory_kib = 0\n"},
		{"bad direct url", "[network]\ndirect_url = \"ftp://x\"\n"},
		{"malformed", "[guard\n"},
		{"misspelled key", "[guard]\nmax_failed_atempts = 4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			_, err := LoadSettings(path)
			if !errors.Is(err, kerrors.ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	settings := DefaultSettings()
	settings.Session.CoverURL = "https://example.org/recipes"

	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded.Session.CoverURL != "https://example.org/recipes" {
		t.Errorf("Expected cover URL to round trip, got %q", loaded.Session.CoverURL)
	}
	if loaded.Network.TorTimeout != 90*time.Second {
		t.Errorf("Expected tor timeout to round trip, got %v", loaded.Network.TorTimeout)
	}
}

func TestPathsAtLayout(t *testing.T) {
	p := PathsAt("/cfg", "/data")
	if p.SettingsFile != filepath.Join("/cfg", "settings.toml") {
		t.Errorf("Unexpected settings path %q", p.SettingsFile)
	}
	if p.SecretsDB != filepath.Join("/data", "secrets.db") {
		t.Errorf("Unexpected secrets path %q", p.SecretsDB)
	}
	if p.CacheDir != filepath.Join("/data", "cache") {
		t.Errorf("Unexpected cache path %q", p.CacheDir)
	}
}

func TestDefaultPathsHonorsRefugeHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("REFUGE_HOME", home)

	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths failed: %v", err)
	}
	if p.DataDir != filepath.Join(home, "data") {
		t.Errorf("Expected data dir under REFUGE_HOME, got %q", p.DataDir)
	}
}
