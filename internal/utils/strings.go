package utils

import (
	"strings"

	"github.com/PolarWolf314/envstore/internal/ui"
)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// Plural returns word with an s appended unless n is one.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
