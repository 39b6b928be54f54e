package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const gitignoreFile = ".gitignore"

// RepositoryRoot returns the root of the git work tree containing dir.
// ok is false when dir is not inside a git repository.
func RepositoryRoot(dir string) (root string, ok bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}

	return wt.Filesystem.Root(), true
}

// IsIgnored reports whether path is matched by the .gitignore in dir.
// path is relative to dir.
func IsIgnored(dir, path string) (bool, error) {
	patterns, err := readGitignore(dir)
	if err != nil {
		return false, err
	}

	return matches(patterns, path), nil
}

// EnsureIgnored appends each path that the .gitignore in dir does not
// already match. Paths are relative to dir. Returns the paths that were added.
func EnsureIgnored(dir string, paths []string) ([]string, error) {
	patterns, err := readGitignore(dir)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, p := range paths {
		p = filepath.ToSlash(filepath.Clean(p))
		if p == "" || p == "." || strings.HasPrefix(p, "../") || matches(patterns, p) {
			continue
		}
		added = append(added, p)
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := appendLines(filepath.Join(dir, gitignoreFile), added); err != nil {
		return nil, err
	}

	return added, nil
}

func matches(patterns []gitignore.Pattern, path string) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	return gitignore.NewMatcher(patterns).Match(parts, false)
}

func readGitignore(dir string) ([]gitignore.Pattern, error) {
	data, err := os.ReadFile(filepath.Join(dir, gitignoreFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", gitignoreFile, err)
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return patterns, nil
}

func appendLines(path string, lines []string) (err error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var b strings.Builder
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		b.WriteString("\n")
	}
	b.WriteString("# envstore\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
