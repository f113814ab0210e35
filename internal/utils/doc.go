// Package utils provides shared helpers for the refuge CLI and its storage.
//
// # Filesystem Utilities
//
//   - ShredFile: overwrites a file with random bytes, syncs and removes it
//   - WriteFileAtomic: writes through a temporary file and rename
//
// # I/O Utilities
//
//   - ReadLine: reads one trimmed line, used when a PIN is piped in
//
// # Terminal Utilities
//
//   - ReadPIN: prompts for a PIN without echo, falling back to a piped line
//   - IsTerminal: checks if stdin is a terminal
//   - ClearScreen: clears the terminal through the TTY
//
// # String Utilities
//
//   - MaskIdentifier: hides most of a network name for log output
//   - FormatList: renders a bulleted list for terminal output
package utils
