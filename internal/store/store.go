package store

// Well-known SecretStore keys.
const (
	KeyPinRecord     = "pin_record"
	KeyEncryptionKey = "encryption_key"
)

// SecretKeys lists every key the guard writes to a SecretStore. The panic
// wipe deletes exactly these, most sensitive first.
var SecretKeys = []string{KeyPinRecord, KeyEncryptionKey}

// SecretStore is a durable, non-enumerable store for small secrets.
type SecretStore interface {
	Put(key string, value []byte) error
	// Get returns the stored value and whether it was present.
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
}

// ConfigStore is a durable key-value store for non-secret settings.
type ConfigStore interface {
	Put(key, value string) error
	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool, error)
	Delete(key string) error
	RemoveAll() error
}
