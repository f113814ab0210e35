package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	bolt "go.etcd.io/bbolt"
)

var secretsBucket = []byte("secrets")

// BoltSecrets is a SecretStore backed by a bbolt database file.
type BoltSecrets struct {
	db *bolt.DB
}

// OpenBoltSecrets opens (creating if needed) the database at path with 0600
// permissions. A second process holding the file lock makes this fail after
// a short timeout rather than block forever.
func OpenBoltSecrets(path string) (*BoltSecrets, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating secrets directory: %w", kerrors.ErrStoreUnavailable)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v: %w", path, err, kerrors.ErrStoreUnavailable)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(secretsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating secrets bucket: %v: %w", err, kerrors.ErrStoreUnavailable)
	}

	return &BoltSecrets{db: db}, nil
}

func (b *BoltSecrets) Put(key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(secretsBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("writing secret %q: %v: %w", key, err, kerrors.ErrStoreUnavailable)
	}
	return nil
}

func (b *BoltSecrets) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(secretsBucket).Get([]byte(key))
		if v != nil {
			// bbolt values are only valid inside the transaction.
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading secret %q: %v: %w", key, err, kerrors.ErrStoreUnavailable)
	}
	return out, out != nil, nil
}

func (b *BoltSecrets) Delete(key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(secretsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting secret %q: %v: %w", key, err, kerrors.ErrStoreUnavailable)
	}
	return nil
}

func (b *BoltSecrets) Close() error {
	return b.db.Close()
}
