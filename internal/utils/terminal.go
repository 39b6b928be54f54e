package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ReadSecret prompts on stderr and reads a line without echoing it.
// Returns an error if stdin is not a terminal.
func ReadSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot read key: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsOutputTerminal returns true if stdout is a terminal.
func IsOutputTerminal() bool {
	return isTTY(os.Stdout)
}

// IsErrorTerminal returns true if stderr is a terminal.
func IsErrorTerminal() bool {
	return isTTY(os.Stderr)
}

// isTTY includes Cygwin and MSYS terminals on Windows.
func isTTY(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether both stdin and stdout are terminals, which
// is required before showing a prompt.
func IsInteractive() bool {
	return IsTerminal() && IsOutputTerminal()
}
