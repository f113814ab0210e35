// Package advisor rates how private the current network attachment is.
//
// The advice is informational. Nothing here blocks or reroutes requests.
// The Wi-Fi identifier is read locally and only compared against the
// trusted set and the public-name heuristic.
package advisor
