package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter styles one kind of CLI text. Without color it falls back to
// plain delimiters so the meaning survives in logs and pipes.
type Formatter struct {
	color         *color.Color
	before, after string
}

func styled(attr color.Attribute) Formatter {
	return Formatter{color: color.New(attr)}
}

func delimited(attr color.Attribute, before, after string) Formatter {
	return Formatter{color: color.New(attr), before: before, after: after}
}

func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.before + text + f.after
	}
	return f.color.Sprint(text)
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor is true when NO_COLOR is set or stdout is not a color terminal.
func noColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code is a refuge command the user can copy, such as `refuge unlock`.
	Code = delimited(color.FgYellow, "`", "`")

	// Path names a file refuge writes or shreds.
	Path = styled(color.FgYellow)

	Success = styled(color.FgGreen)
	Error   = styled(color.FgRed)
	Warning = styled(color.FgYellow)
	Info    = styled(color.FgCyan)

	// Highlight is a value the user chose: a privacy mode, a provider or
	// a network name.
	Highlight = delimited(color.FgCyan, "'", "'")

	// Muted is a side note, for example an on/off state after a label.
	Muted = delimited(color.FgHiBlack, "(", ")")
)
