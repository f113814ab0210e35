package utils

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadLine reads a single line from r with surrounding whitespace removed.
// It reads one byte at a time so later reads from r see the next line.
func ReadLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}

	line := strings.TrimSpace(b.String())
	if line == "" {
		return "", fmt.Errorf("no input provided")
	}
	return line, nil
}
