package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// SuccessLine prefixes msg with a success mark.
func SuccessLine(msg string) string {
	return Success.Sprint("✓") + " " + msg
}

// ErrorLine prefixes msg with an error mark.
func ErrorLine(msg string) string {
	return Error.Sprint("✗") + " " + msg
}

// WarningLine prefixes msg with a warning mark.
func WarningLine(msg string) string {
	return Warning.Sprint("⚠") + " " + msg
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for CLI output.
var (
	// Code formats runnable commands. `backticks` without color.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags like --key-file.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Info formats hints and arrows.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats variable names and algorithm names. 'quotes' without color.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Secret formats variable values, masked or not.
	Secret = Formatter{color.New(color.FgMagenta), "", ""}

	// Muted formats secondary details. (parentheses) without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)
