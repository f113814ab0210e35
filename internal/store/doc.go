// Package store defines the two durable stores the guard depends on and
// ships implementations of both.
//
// # Contracts
//
// SecretStore holds small secrets (the hashed PIN record and the symmetric
// encryption key). It has no enumeration API: callers must know the key they
// want. Values are always loaded and saved whole.
//
// ConfigStore holds non-secret settings (privacy mode, flags, the trusted
// network list, persisted history). It supports RemoveAll so the panic wipe
// can clear it in one step.
//
// Every operation is atomic. Each implementation serializes its own callers,
// so two writers can never interleave on the same key.
//
// # Implementations
//
//   - MemorySecrets, MemoryConfig: in-process fakes for tests and incognito hosts
//   - BoltSecrets: bbolt database file, one bucket, fsync on commit
//   - FileConfig: TOML file rewritten whole on every mutation
package store
