package configs

import (
	"fmt"
	"os"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/guard"
)

type Settings struct {
	Guard   GuardSettings   `toml:"guard"`
	Network NetworkSettings `toml:"network"`
	Session SessionSettings `toml:"session"`
}

type GuardSettings struct {
	// MaxFailedAttempts applies when the user has not chosen a limit.
	MaxFailedAttempts int  `toml:"max_failed_attempts"`
	PanicWipe         bool `toml:"panic_wipe"`

	Argon2Time      uint32 `toml:"argon2_time"`
	Argon2MemoryKiB uint32 `toml:"argon2_memory_kib"`
	Argon2Threads   uint8  `toml:"argon2_threads"`
}

// HashParams converts the Argon2 settings for the guard.
func (g GuardSettings) HashParams() guard.HashParams {
	return guard.HashParams{Time: g.Argon2Time, MemoryKiB: g.Argon2MemoryKiB, Threads: g.Argon2Threads}
}

type NetworkSettings struct {
	DirectURL  string `toml:"direct_url"`
	OnionURL   string `toml:"onion_url"`
	HealthPath string `toml:"health_path"`
	ControlURL string `toml:"control_url"`

	TorSOCKSAddr string `toml:"tor_socks_addr"`
	TorStrict    bool   `toml:"tor_strict"`

	AutoCensorshipDetection bool `toml:"auto_censorship_detection"`

	LocalProbeTimeout  time.Duration `toml:"local_probe_timeout"`
	RemoteProbeTimeout time.Duration `toml:"remote_probe_timeout"`
	DirectTimeout      time.Duration `toml:"direct_timeout"`
	FrontingTimeout    time.Duration `toml:"fronting_timeout"`
	TorTimeout         time.Duration `toml:"tor_timeout"`

	Providers map[string]ProviderSettings `toml:"providers"`

	// PublicNameFragments replaces the built-in public Wi-Fi heuristic list when non-empty.
	PublicNameFragments []string `toml:"public_name_fragments"`
}

type ProviderSettings struct {
	ReflectorURL string `toml:"reflector_url"`
	FrontDomain  string `toml:"front_domain"`
}

type SessionSettings struct {
	CoverURL     string `toml:"cover_url"`
	HistoryLimit int    `toml:"history_limit"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		Guard: GuardSettings{
			MaxFailedAttempts: 5,
			PanicWipe:         false,
			Argon2Time:        3,
			Argon2MemoryKiB:   64 * 1024,
			Argon2Threads:     4,
		},
		Network: NetworkSettings{
			DirectURL:          "https://api.refuge-directory.org",
			OnionURL:           "http://refugedirectoryv3apiq7xk2mzpl5dgsoq4ewk5txbyf6nsmhyvw3vxjxkqd.onion",
			HealthPath:         "/health",
			ControlURL:         "https://www.gstatic.com/generate_204",
			TorSOCKSAddr:       "127.0.0.1:9050",
			LocalProbeTimeout:  2500 * time.Millisecond,
			RemoteProbeTimeout: 8 * time.Second,
			DirectTimeout:      30 * time.Second,
			FrontingTimeout:    45 * time.Second,
			TorTimeout:         90 * time.Second,
			Providers:          map[string]ProviderSettings{},
		},
		Session: SessionSettings{
			CoverURL:     "https://www.weather.gov",
			HistoryLimit: 25,
		},
	}
}

// LoadSettings reads path over the defaults. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	if err := LoadTOML(path, settings); err != nil {
		return nil, fmt.Errorf("failed to load settings: %v: %w", err, kerrors.ErrInvalidSettings)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings writes settings to path.
func SaveSettings(path string, settings *Settings) error {
	if err := SaveTOML(path, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Validate rejects settings that would make the guard unsafe or the router unusable.
func (s *Settings) Validate() error {
	if s.Guard.MaxFailedAttempts < guard.MinMaxAttempts || s.Guard.MaxFailedAttempts > guard.MaxMaxAttempts {
		return fmt.Errorf("guard.max_failed_attempts must be between %d and %d: %w",
			guard.MinMaxAttempts, guard.MaxMaxAttempts, kerrors.ErrInvalidSettings)
	}
	if s.Guard.Argon2Time == 0 || s.Guard.Argon2MemoryKiB == 0 || s.Guard.Argon2Threads == 0 {
		return fmt.Errorf("argon2 parameters must be non-zero: %w", kerrors.ErrInvalidSettings)
	}
	if !strings.HasPrefix(s.Network.DirectURL, "http") {
		return fmt.Errorf("network.direct_url must be an http(s) URL: %w", kerrors.ErrInvalidSettings)
	}
	if s.Network.TorSOCKSAddr == "" {
		return fmt.Errorf("network.tor_socks_addr is required: %w", kerrors.ErrInvalidSettings)
	}
	if s.Network.LocalProbeTimeout <= 0 || s.Network.RemoteProbeTimeout <= 0 {
		return fmt.Errorf("probe timeouts must be positive: %w", kerrors.ErrInvalidSettings)
	}
	if s.Session.HistoryLimit < 0 {
		return fmt.Errorf("session.history_limit must not be negative: %w", kerrors.ErrInvalidSettings)
	}
	return nil
}
