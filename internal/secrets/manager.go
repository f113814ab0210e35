package secrets

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	logger "github.com/PolarWolf314/refuge/internal/logging"
	"github.com/PolarWolf314/refuge/internal/store"
)

// ConfigEnabled is the ConfigStore key holding the encryption flag.
const ConfigEnabled = "encryption.enabled"

// Manager owns the encryption key and the enabled flag.
type Manager struct {
	mu      sync.Mutex
	secrets store.SecretStore
	config  store.ConfigStore
	log     logger.Logger
}

func NewManager(secrets store.SecretStore, config store.ConfigStore, log logger.Logger) *Manager {
	return &Manager{secrets: secrets, config: config, log: log}
}

// Enable creates the key if none exists and turns encryption on. Calling it
// again keeps the existing key.
func (m *Manager) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok, err := m.secrets.Get(store.KeyEncryptionKey)
	if err != nil {
		return fmt.Errorf("loading encryption key: %w", err)
	}
	if !ok {
		key, err := CreateSymmetricKey()
		if err != nil {
			return fmt.Errorf("failed to generate encryption key: %w", err)
		}
		if err := m.secrets.Put(store.KeyEncryptionKey, key); err != nil {
			return fmt.Errorf("saving encryption key: %w", err)
		}
		m.log.Debugf("Created new encryption key")
	}

	if err := m.config.Put(ConfigEnabled, "true"); err != nil {
		return fmt.Errorf("saving encryption flag: %w", err)
	}
	return nil
}

// Disable turns encryption off and keeps the key.
func (m *Manager) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.config.Put(ConfigEnabled, "false"); err != nil {
		return fmt.Errorf("saving encryption flag: %w", err)
	}
	return nil
}

func (m *Manager) Enabled() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabledLocked()
}

// HasKey reports whether a key is stored.
func (m *Manager) HasKey() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok, err := m.secrets.Get(store.KeyEncryptionKey)
	if err != nil {
		return false, fmt.Errorf("loading encryption key: %w", err)
	}
	return ok, nil
}

// Encrypt seals plaintext when encryption is enabled and returns it
// unchanged otherwise.
func (m *Manager) Encrypt(plaintext []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	enabled, err := m.enabledLocked()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return plaintext, nil
	}

	key, err := m.keyLocked()
	if err != nil {
		return nil, err
	}
	return Seal(key, plaintext)
}

// Decrypt opens sealed payloads with the stored key. Unsealed payloads are
// rejected while encryption is enabled and passed through while disabled.
// While disabled, plaintext that merely starts with the envelope prefix is
// returned as is when it does not open.
func (m *Manager) Decrypt(payload []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	enabled, err := m.enabledLocked()
	if err != nil {
		return nil, err
	}

	if !IsSealed(payload) {
		if enabled {
			return nil, kerrors.ErrDecryptionFailed
		}
		return payload, nil
	}

	key, err := m.keyLocked()
	if err != nil {
		if !enabled && errors.Is(err, kerrors.ErrEncryptionKeyMissing) {
			return payload, nil
		}
		return nil, err
	}

	plain, err := Open(key, payload)
	if err != nil && !enabled && errors.Is(err, kerrors.ErrDecryptionFailed) {
		return payload, nil
	}
	return plain, err
}

// DestroyKey removes the key from the SecretStore. Only the panic wipe
// calls this.
func (m *Manager) DestroyKey() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.secrets.Delete(store.KeyEncryptionKey); err != nil {
		return fmt.Errorf("deleting encryption key: %w", err)
	}
	return nil
}

func (m *Manager) enabledLocked() (bool, error) {
	v, ok, err := m.config.Get(ConfigEnabled)
	if err != nil {
		return false, fmt.Errorf("loading encryption flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return enabled, nil
}

func (m *Manager) keyLocked() ([]byte, error) {
	key, ok, err := m.secrets.Get(store.KeyEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("loading encryption key: %w", err)
	}
	if !ok {
		return nil, kerrors.ErrEncryptionKeyMissing
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("stored key is %d bytes: %w", len(key), kerrors.ErrInvalidKeyLength)
	}
	return key, nil
}
