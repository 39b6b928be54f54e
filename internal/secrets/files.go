package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// StoreFileMode is used for encrypted store files, which are meant to be committed.
	StoreFileMode fs.FileMode = 0644
	// KeyFileMode is used for key files.
	KeyFileMode fs.FileMode = 0600
)

// ReadFile returns the contents of path. found is false when the file does
// not exist; any other failure is reported as ErrIO.
func ReadFile(path string) (content string, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: reading %s: %v", kerrors.ErrIO, path, err)
	}

	return string(data), true, nil
}

// WriteFile writes content to path with perm, creating parent directories.
func WriteFile(path, content string, perm fs.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %v", kerrors.ErrIO, path, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", kerrors.ErrIO, path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", kerrors.ErrIO, path, closeErr)
		}
	}()

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("%w: writing %s: %v", kerrors.ErrIO, path, err)
	}

	// OpenFile keeps the mode of an existing file.
	if err := file.Chmod(perm); err != nil {
		return fmt.Errorf("%w: setting permissions on %s: %v", kerrors.ErrIO, path, err)
	}

	return nil
}

// AbsolutePath returns path unchanged when absolute, otherwise relative to baseDir.
// An empty baseDir means the working directory.
func AbsolutePath(path, baseDir string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: getting working directory: %v", kerrors.ErrIO, err)
		}
		baseDir = wd
	}

	return filepath.Join(baseDir, path), nil
}

// ResolveStoreFiles expands paths and globs (with ** support) into existing
// regular files. Relative patterns are resolved against baseDir. Literal
// paths must exist. The result keeps pattern order and has no duplicates.
func ResolveStoreFiles(patterns []string, baseDir string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, baseDir)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %w: nothing matches %s", kerrors.ErrIO, kerrors.ErrFileNotFound, strings.Join(patterns, ", "))
	}

	return files, nil
}

func resolvePattern(pattern, baseDir string) ([]string, error) {
	absPattern, err := AbsolutePath(pattern, baseDir)
	if err != nil {
		return nil, err
	}

	if !strings.ContainsAny(pattern, "*?[{") {
		info, err := os.Stat(absPattern)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", kerrors.ErrIO, kerrors.ErrFileNotFound, pattern)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", kerrors.ErrIO, pattern)
		}
		return []string{absPattern}, nil
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}

	return files, nil
}
