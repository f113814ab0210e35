package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ReadPIN prompts for a PIN without echoing it. When stdin is not a terminal
// the PIN is read as one line from stdin so scripts can pipe it in.
func ReadPIN(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return ReadLine(os.Stdin)
	}

	fmt.Fprint(os.Stderr, prompt)
	pin, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read pin: %w", err)
	}
	return string(pin), nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// WriteToTTY writes content directly to the terminal, bypassing stdout.
func WriteToTTY(content string) error {
	path := ttyPath()

	tty, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open %s for writing: %w", path, err)
	}
	defer tty.Close()

	if _, err := tty.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to TTY: %w", err)
	}
	return nil
}

// ClearScreen clears the terminal and its scrollback.
func ClearScreen() error {
	return WriteToTTY("\033[3J\033[2J\033[H")
}
