// Package dotenv reads and writes .env files and KEY=VALUE arguments.
package dotenv

import (
	"fmt"
	"sort"
	"strings"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"

	"github.com/joho/godotenv"
)

// Parse reads variables in dotenv syntax.
func Parse(content string) (map[string]string, error) {
	vars, err := godotenv.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidVariable, err)
	}
	return vars, nil
}

// ParseAssignment splits a KEY=VALUE argument on its first '='.
// The value may be empty; the key may not.
func ParseAssignment(arg string) (key, value string, err error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not in KEY=VALUE form", kerrors.ErrInvalidVariable, arg)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("%w: %q has an empty key", kerrors.ErrInvalidVariable, arg)
	}

	return key, value, nil
}

// ParseAssignments parses every argument and returns the merged map.
// Later assignments of the same key win.
func ParseAssignments(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, err := ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		vars[key] = value
	}
	return vars, nil
}

// Merge returns a new map with the entries of every map, later maps winning.
func Merge(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// Marshal renders vars as a dotenv file with sorted entries.
//
// Each value is written in the first form godotenv reads back unchanged:
// double quoted, single quoted, then bare. A value none of them can carry,
// such as a multi-line value that contains ' and ends with ", is rejected
// with ErrInvalidVariable instead of being rewritten.
func Marshal(vars map[string]string) (string, error) {
	var b strings.Builder
	for _, key := range Keys(vars) {
		line, err := marshalEntry(key, vars[key])
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}

var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	`$`, `\$`,
)

func marshalEntry(key, value string) (string, error) {
	forms := []string{`"` + doubleQuoteEscaper.Replace(value) + `"`}
	if !strings.ContainsAny(value, "'\r") {
		forms = append(forms, "'"+value+"'")
	}
	// Bare values expand $NAME from the environment.
	if value != "" && !strings.ContainsAny(value, "\n\r$") {
		forms = append(forms, value)
	}

	for _, form := range forms {
		line := key + "=" + form
		parsed, err := godotenv.Unmarshal(line)
		if got, ok := parsed[key]; err == nil && ok && len(parsed) == 1 && got == value {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: the value of %s cannot be written to a dotenv file", kerrors.ErrInvalidVariable, key)
}

// Keys returns the variable names in sorted order.
func Keys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lines renders vars as unquoted KEY=value lines sorted by key.
func Lines(vars map[string]string) []string {
	lines := make([]string, 0, len(vars))
	for _, k := range Keys(vars) {
		lines = append(lines, k+"="+vars[k])
	}
	return lines
}

// Mask hides all but the first few characters of value.
func Mask(value string) string {
	const visible = 2

	runes := []rune(value)
	if len(runes) <= visible*2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:visible]) + strings.Repeat("*", len(runes)-visible)
}
