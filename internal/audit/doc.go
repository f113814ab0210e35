// Package audit keeps a local journal of security events.
//
// Unlock attempts, PIN changes, privacy mode changes, encryption toggles,
// incognito sessions and quick exits are recorded so the user can see
// whether someone else tried to get in. Entries never carry a PIN, a key or
// a network name.
//
// # Log Format
//
// The journal is JSON Lines (one JSON object per line) stored next to the
// other data files as journal.jsonl with 0600 permissions. Each entry has a
// UTC timestamp with microseconds, an event name, the session id when one
// is active and event-specific details.
//
// # Failure Handling
//
// Logging is best-effort. A failed write never fails the operation that
// triggered it.
//
// # Destruction
//
// The panic wipe calls Destroy, which overwrites the file before removing
// it.
package audit
