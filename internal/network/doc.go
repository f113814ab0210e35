// Package network decides how outbound requests reach the directory backend.
//
// A Router reads the persisted privacy mode and returns a Resolution naming
// the effective mode, the base URL and the transport to use:
//
//   - standard: the direct URL. With censorship detection on, a health probe
//     against the backend and a control probe against a well-known URL run
//     concurrently; when only the backend is unreachable the call falls back
//     to domain fronting without changing the stored mode.
//   - fronting: the reflector URL of the selected CDN provider. Connections
//     go to the provider's front domain while the Host header names the
//     reflector.
//   - tor: the onion URL through the local SOCKS5 proxy. When the proxy is
//     not listening the call steps down to fronting and marks the
//     Resolution as degraded, unless strict Tor is configured.
//
// Every Resolve call probes again. Probes are bounded by timeouts, honor
// context cancellation and never write to the stores, so a Router is safe
// for concurrent use.
package network
