// Package configs loads refuge's deployment settings and resolves the
// on-disk locations of its stores.
//
// Settings are read from a TOML file and layered over built-in defaults:
//
//	<UserConfigDir>/refuge/settings.toml
//
// The file is optional. Every field has a default, so a missing or partial
// file still produces a complete Settings value.
//
// # Settings vs. State
//
// Settings describe the deployment (backend endpoints, probe timeouts,
// Argon2 cost, CDN reflector overrides). They are never written by the
// guard and are not removed by the panic wipe.
//
// User state (privacy mode, trusted networks, history, attempt limits)
// lives in the ConfigStore under the data directory and is wiped.
//
// # Paths
//
// Paths resolves the data directory from REFUGE_HOME when set, otherwise
// $XDG_DATA_HOME/refuge (falling back to ~/.local/share/refuge):
//
//	secrets.db     bbolt SecretStore
//	state.toml     ConfigStore
//	cache/         encrypted payload cache
//	journal.jsonl  security event journal
package configs
