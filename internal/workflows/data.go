package workflows

import (
	"fmt"

	"github.com/PolarWolf314/refuge/internal/audit"
)

// Encrypt seals plaintext with the encryption manager.
func (o *Orchestrator) Encrypt(plaintext []byte) ([]byte, error) {
	done, err := o.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	return o.opts.Encryption.Encrypt(plaintext)
}

// Decrypt opens a payload with the encryption manager.
func (o *Orchestrator) Decrypt(payload []byte) ([]byte, error) {
	done, err := o.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	return o.opts.Encryption.Decrypt(payload)
}

// StorePayload writes data to the on-disk cache.
func (o *Orchestrator) StorePayload(name string, data []byte) error {
	done, err := o.beginUnlocked()
	if err != nil {
		return err
	}
	defer done()

	return o.opts.Cache.Put(name, data)
}

// LoadPayload reads data from the on-disk cache.
func (o *Orchestrator) LoadPayload(name string) ([]byte, bool, error) {
	done, err := o.beginUnlocked()
	if err != nil {
		return nil, false, err
	}
	defer done()

	return o.opts.Cache.Get(name)
}

// EncryptionEnabled reports whether local data is sealed.
func (o *Orchestrator) EncryptionEnabled() (bool, error) {
	done, err := o.begin()
	if err != nil {
		return false, err
	}
	defer done()

	return o.opts.Encryption.Enabled()
}

// EnableEncryption turns encryption on and reseals cached payloads and
// history so nothing readable stays on disk.
func (o *Orchestrator) EnableEncryption() error {
	return o.toggleEncryption(true)
}

// DisableEncryption turns encryption off and rewrites cached payloads and
// history in the clear. The key is kept.
func (o *Orchestrator) DisableEncryption() error {
	return o.toggleEncryption(false)
}

// toggleEncryption holds the write lock so no payload or history entry is
// written between the snapshot and the reseal.
func (o *Orchestrator) toggleEncryption(enable bool) error {
	done, err := o.beginExclusive()
	if err != nil {
		return err
	}
	defer done()

	current, err := o.opts.Encryption.Enabled()
	if err != nil {
		return err
	}
	if current == enable {
		if enable {
			// Idempotent, but still makes sure a key exists.
			return o.opts.Encryption.Enable()
		}
		return nil
	}

	payloads, err := o.readPayloads()
	if err != nil {
		return err
	}
	recent, err := o.loadList(ConfigRecent)
	if err != nil {
		return err
	}
	searches, err := o.loadList(ConfigSearch)
	if err != nil {
		return err
	}

	if enable {
		err = o.opts.Encryption.Enable()
	} else {
		err = o.opts.Encryption.Disable()
	}
	if err != nil {
		return err
	}

	for name, data := range payloads {
		if err := o.opts.Cache.Put(name, data); err != nil {
			return fmt.Errorf("rewriting cache entry %s: %w", name, err)
		}
	}
	if recent != nil {
		if err := o.saveList(ConfigRecent, recent); err != nil {
			return err
		}
	}
	if searches != nil {
		if err := o.saveList(ConfigSearch, searches); err != nil {
			return err
		}
	}

	if enable {
		o.journal(audit.Entry{Event: audit.EventEncryptionEnabled})
	} else {
		o.journal(audit.Entry{Event: audit.EventEncryptionOff})
	}
	return nil
}

func (o *Orchestrator) readPayloads() (map[string][]byte, error) {
	payloads := make(map[string][]byte)
	if o.opts.Cache == nil {
		return payloads, nil
	}

	names, err := o.opts.Cache.Names()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, ok, err := o.opts.Cache.Get(name)
		if err != nil {
			return nil, fmt.Errorf("reading cache entry %s: %w", name, err)
		}
		if ok {
			payloads[name] = data
		}
	}
	return payloads, nil
}
