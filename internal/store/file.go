package store

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/utils"
)

type fileConfigDocument struct {
	Values map[string]string `toml:"values"`
}

// FileConfig is a ConfigStore persisted as a TOML document. The whole file
// is rewritten atomically on every mutation.
type FileConfig struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFileConfig loads the document at path. A missing file is an empty store.
func OpenFileConfig(path string) (*FileConfig, error) {
	fc := &FileConfig{path: path, values: make(map[string]string)}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fc, nil
	}

	var doc fileConfigDocument
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("loading %s: %v: %w", path, err, kerrors.ErrStoreUnavailable)
	}
	if doc.Values != nil {
		fc.values = doc.Values
	}

	return fc, nil
}

func (f *FileConfig) Put(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileConfig) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileConfig) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// RemoveAll clears memory and shreds the backing file.
func (f *FileConfig) RemoveAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = make(map[string]string)
	if err := utils.ShredFile(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %v: %w", f.path, err, kerrors.ErrStoreUnavailable)
	}
	return nil
}

func (f *FileConfig) flush() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fileConfigDocument{Values: f.values}); err != nil {
		return fmt.Errorf("encoding config: %v: %w", err, kerrors.ErrStoreUnavailable)
	}
	if err := utils.WriteFileAtomic(f.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%v: %w", err, kerrors.ErrStoreUnavailable)
	}
	return nil
}
