package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/PolarWolf314/refuge/internal/ui"
)

// MaskIdentifier keeps the first two characters of id and hides the rest.
func MaskIdentifier(id string) string {
	n := utf8.RuneCountInString(id)
	if n <= 2 {
		return strings.Repeat("*", n)
	}
	runes := []rune(id)
	return string(runes[:2]) + strings.Repeat("*", n-2)
}

// FormatList formats items as an indented bulleted list.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("    - ")
		b.WriteString(ui.Highlight.Sprint(item))
		b.WriteString("\n")
	}
	return b.String()
}
