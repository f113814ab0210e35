// Package ui provides semantic text formatting for CLI output.
//
// Formatters render with color when the terminal supports it. When NO_COLOR
// is set or the terminal has no color support, text decorations are used
// instead so the meaning survives:
//
//	ui.Code.Sprint("refuge pin set")    // `refuge pin set`
//	ui.Highlight.Sprint("fronting")     // 'fronting'
//	ui.Muted.Sprint("optional")         // (optional)
//
// Privacy ratings from the network advisor map onto formatters through
// ForLevel, and Mark renders a check or cross for yes/no status lines.
package ui
