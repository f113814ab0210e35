// Package cache stores payloads on disk for offline use.
//
// Every payload passes through a Sealer before it is written, so when
// encryption is enabled nothing readable reaches the disk. Files are written
// with 0600 permissions through a temporary file and rename.
//
// Purge enumerates every file under the cache directory, overwrites each one
// with random bytes, syncs it and removes it, then removes the directory.
// The panic wipe uses Purge.
package cache
