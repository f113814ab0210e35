package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the on-disk locations used by the CLI host.
type Paths struct {
	ConfigDir    string
	DataDir      string
	SettingsFile string
	SecretsDB    string
	StateFile    string
	CacheDir     string
	JournalFile  string
}

// DefaultPaths resolves Paths from the environment.
func DefaultPaths() (Paths, error) {
	if home := os.Getenv("REFUGE_HOME"); home != "" {
		return PathsAt(filepath.Join(home, "config"), filepath.Join(home, "data")), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("error getting home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return PathsAt(filepath.Join(configDir, "refuge"), filepath.Join(dataDir, "refuge")), nil
}

// PathsAt lays out Paths under explicit config and data directories.
func PathsAt(configDir, dataDir string) Paths {
	return Paths{
		ConfigDir:    configDir,
		DataDir:      dataDir,
		SettingsFile: filepath.Join(configDir, "settings.toml"),
		SecretsDB:    filepath.Join(dataDir, "secrets.db"),
		StateFile:    filepath.Join(dataDir, "state.toml"),
		CacheDir:     filepath.Join(dataDir, "cache"),
		JournalFile:  filepath.Join(dataDir, "journal.jsonl"),
	}
}

// EnsureDataDir creates the data directory with owner-only permissions.
func (p Paths) EnsureDataDir() error {
	if err := os.MkdirAll(p.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.DataDir, err)
	}
	return nil
}
