package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

// InsecureDefaultKey is the well-known key used when no other key is
// available. Anything encrypted with it is readable by anyone with this
// source; real secrets need an explicit key or a key file.
const InsecureDefaultKey = "env-store-key"

// KeySource records where a resolved data key came from.
type KeySource string

const (
	// KeySourceExplicit means the caller passed the key directly.
	KeySourceExplicit KeySource = "explicit"
	// KeySourceFile means the key was read from the key file.
	KeySourceFile KeySource = "file"
	// KeySourceDefault means the configured default key was used.
	KeySourceDefault KeySource = "default"
)

// Key is a resolved data key.
type Key struct {
	Value  string
	Source KeySource
	// Path is the key file path when Source is KeySourceFile.
	Path string
}

// ResolveKey picks the data key in a fixed order: explicitKey, then the
// trimmed contents of keyFilePath, then defaultKey. Empty values are skipped.
// The key file is read on every call.
//
// With an empty defaultKey resolution is strict and returns ErrKeyNotFound
// when neither an explicit key nor a non-empty key file exists.
func ResolveKey(explicitKey, keyFilePath, defaultKey string) (Key, error) {
	if explicitKey != "" {
		return Key{Value: explicitKey, Source: KeySourceExplicit}, nil
	}

	if keyFilePath != "" {
		content, found, err := ReadFile(keyFilePath)
		if err != nil {
			return Key{}, fmt.Errorf("reading key file: %w", err)
		}
		if key := strings.TrimSpace(content); found && key != "" {
			return Key{Value: key, Source: KeySourceFile, Path: keyFilePath}, nil
		}
	}

	if defaultKey != "" {
		return Key{Value: defaultKey, Source: KeySourceDefault}, nil
	}

	return Key{}, fmt.Errorf("%w: no key given and no key file at %s", kerrors.ErrKeyNotFound, keyFilePath)
}

// GenerateKey returns a random 256-bit key, hex encoded.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}

	return hex.EncodeToString(key), nil
}
