package secrets

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

// Default paths, relative to the project directory.
const (
	DefaultStorePath   = ".env.store"
	DefaultKeyFilePath = ".env.store.key"
)

// Options configures a Store.
type Options struct {
	// Key is an explicit data key. It takes precedence over the key file.
	Key string

	// KeyFilePath is read on every key resolution.
	KeyFilePath string

	// StorePath is used when Save or Load get an empty path.
	StorePath string

	// Algorithm encrypts new stores and opens untagged ones.
	Algorithm ciphers.Algorithm

	// DefaultKey is the last resort key. Leave it empty for strict resolution.
	DefaultKey string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		KeyFilePath: DefaultKeyFilePath,
		StorePath:   DefaultStorePath,
		Algorithm:   ciphers.Default,
		DefaultKey:  InsecureDefaultKey,
	}
}

// Store reads and writes encrypted env files.
type Store struct {
	opts Options
}

// NewStore returns a Store. Empty paths and algorithm fall back to the defaults;
// DefaultKey is kept as given.
func NewStore(opts Options) *Store {
	defaults := DefaultOptions()
	if opts.KeyFilePath == "" {
		opts.KeyFilePath = defaults.KeyFilePath
	}
	if opts.StorePath == "" {
		opts.StorePath = defaults.StorePath
	}
	if opts.Algorithm == "" {
		opts.Algorithm = defaults.Algorithm
	}

	return &Store{opts: opts}
}

// UseKey pins key for Save and Load in place of the key file. Nothing is
// written. An empty key re-enables normal resolution.
func (s *Store) UseKey(key string) {
	s.opts.Key = key
}

// SetEncryptionKey writes key to the key file with owner-only permissions.
// A key pinned with UseKey still takes precedence over the file.
//
// Returns ErrEmptyKey for a blank key.
func (s *Store) SetEncryptionKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return kerrors.ErrEmptyKey
	}
	return WriteFile(s.opts.KeyFilePath, key+"\n", KeyFileMode)
}

// KeyFilePath returns the configured key file.
func (s *Store) KeyFilePath() string {
	return s.opts.KeyFilePath
}

// EncryptionKey resolves the data key.
func (s *Store) EncryptionKey() (Key, error) {
	return ResolveKey(s.opts.Key, s.opts.KeyFilePath, s.opts.DefaultKey)
}

// Algorithm returns the configured algorithm.
func (s *Store) Algorithm() ciphers.Algorithm {
	return s.opts.Algorithm
}

// StorePath returns path, or the configured store path when path is empty.
func (s *Store) StorePath(path string) string {
	if path == "" {
		return s.opts.StorePath
	}
	return path
}

// Save encrypts vars and writes the envelope to path.
func (s *Store) Save(vars map[string]string, path string) error {
	key, err := s.EncryptionKey()
	if err != nil {
		return err
	}

	env, err := EncryptEnv(vars, key.Value, s.opts.Algorithm)
	if err != nil {
		return err
	}

	return WriteFile(s.StorePath(path), env, StoreFileMode)
}

// Load reads and decrypts the envelope at path. A missing file is an error.
func (s *Store) Load(path string) (*Decrypted, error) {
	path = s.StorePath(path)

	content, found, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %w: %s", kerrors.ErrIO, kerrors.ErrFileNotFound, path)
	}

	key, err := s.EncryptionKey()
	if err != nil {
		return nil, err
	}

	decrypted, err := DecryptEnv(content, key.Value, s.opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", path, err)
	}

	return decrypted, nil
}
