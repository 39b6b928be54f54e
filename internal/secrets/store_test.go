package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

func newTestStore(t *testing.T, opts Options) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	if opts.StorePath == "" {
		opts.StorePath = filepath.Join(dir, DefaultStorePath)
	}
	if opts.KeyFilePath == "" {
		opts.KeyFilePath = filepath.Join(dir, DefaultKeyFilePath)
	}
	return NewStore(opts), dir
}

func TestNewStore_Defaults(t *testing.T) {
	store := NewStore(Options{})

	if store.Algorithm() != ciphers.AES {
		t.Errorf("Algorithm = %s, want aes", store.Algorithm())
	}
	if store.StorePath("") != DefaultStorePath {
		t.Errorf("StorePath = %s, want %s", store.StorePath(""), DefaultStorePath)
	}
	if store.StorePath("other") != "other" {
		t.Errorf("Expected explicit path to win")
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := newTestStore(t, Options{Key: "explicit", Algorithm: ciphers.Rabbit})

	vars := map[string]string{"A": "1", "B": "2"}
	if err := store.Save(vars, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Vars, vars) {
		t.Errorf("got %v, want %v", got.Vars, vars)
	}
	if got.Algorithm != ciphers.Rabbit {
		t.Errorf("Algorithm = %s, want rabbit", got.Algorithm)
	}
}

func TestStore_SaveWritesSingleLineEnvelope(t *testing.T) {
	store, dir := newTestStore(t, Options{DefaultKey: InsecureDefaultKey})
	path := filepath.Join(dir, "custom.store")

	if err := store.Save(map[string]string{"A": "1"}, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Count(string(data), ".") != 1 || strings.Contains(string(data), "\n") {
		t.Errorf("Expected one-line tagged envelope, got %q", data)
	}
}

func TestStore_UsesKeyFile(t *testing.T) {
	store, _ := newTestStore(t, Options{DefaultKey: InsecureDefaultKey})
	if err := WriteFile(store.opts.KeyFilePath, "file-key\n", KeyFileMode); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := store.Save(map[string]string{"A": "1"}, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, _, _ := ReadFile(store.StorePath(""))
	if _, err := DecryptEnv(content, "file-key", ciphers.AES); err != nil {
		t.Fatalf("Expected store encrypted with key file contents, got: %v", err)
	}
}

func TestStore_UseKey(t *testing.T) {
	store, _ := newTestStore(t, Options{DefaultKey: InsecureDefaultKey})

	if key, _ := store.EncryptionKey(); key.Source != KeySourceDefault {
		t.Fatalf("Source = %s, want default", key.Source)
	}

	store.UseKey("runtime-key")
	key, err := store.EncryptionKey()
	if err != nil {
		t.Fatalf("EncryptionKey() error = %v", err)
	}
	if key.Value != "runtime-key" || key.Source != KeySourceExplicit {
		t.Errorf("got %+v", key)
	}
	if _, found, _ := ReadFile(store.KeyFilePath()); found {
		t.Error("UseKey must not write the key file")
	}

	store.UseKey("")
	if key, _ := store.EncryptionKey(); key.Source != KeySourceDefault {
		t.Errorf("Source = %s, want default after clearing", key.Source)
	}
}

func TestStore_SetEncryptionKey(t *testing.T) {
	store, _ := newTestStore(t, Options{DefaultKey: InsecureDefaultKey})

	if err := store.SetEncryptionKey("  persisted  "); err != nil {
		t.Fatalf("SetEncryptionKey() error = %v", err)
	}

	content, found, err := ReadFile(store.KeyFilePath())
	if err != nil || !found {
		t.Fatalf("Expected key file, found=%v err=%v", found, err)
	}
	if content != "persisted\n" {
		t.Errorf("Key file content = %q", content)
	}
	info, err := os.Stat(store.KeyFilePath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != KeyFileMode {
		t.Errorf("Key file mode = %o, want %o", perm, KeyFileMode)
	}

	key, err := store.EncryptionKey()
	if err != nil {
		t.Fatalf("EncryptionKey() error = %v", err)
	}
	if key.Value != "persisted" || key.Source != KeySourceFile {
		t.Errorf("got %+v", key)
	}

	if err := store.SetEncryptionKey(" "); !errors.Is(err, kerrors.ErrEmptyKey) {
		t.Errorf("Expected ErrEmptyKey, got %v", err)
	}
}

func TestStore_UseKeyOutlivesKeyFile(t *testing.T) {
	store, _ := newTestStore(t, Options{})
	if err := store.SetEncryptionKey("file-key"); err != nil {
		t.Fatal(err)
	}

	key, err := store.EncryptionKey()
	if err != nil {
		t.Fatalf("EncryptionKey() error = %v", err)
	}
	store.UseKey(key.Value)

	if err := os.Remove(store.KeyFilePath()); err != nil {
		t.Fatal(err)
	}

	vars := map[string]string{"A": "1"}
	if err := store.Save(vars, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Vars, vars) {
		t.Errorf("got %v, want %v", got.Vars, vars)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t, Options{Key: "k"})

	_, err := store.Load("")
	if !errors.Is(err, kerrors.ErrIO) || !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Fatalf("Expected ErrIO and ErrFileNotFound, got: %v", err)
	}
}

func TestStore_StrictKey(t *testing.T) {
	store, _ := newTestStore(t, Options{})

	err := store.Save(map[string]string{"A": "1"}, "")
	if !errors.Is(err, kerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got: %v", err)
	}
}

func TestStore_LoadWrongKey(t *testing.T) {
	store, _ := newTestStore(t, Options{Key: "right", Algorithm: ciphers.AES256CBC})
	if err := store.Save(testVars, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	store.UseKey("wrong")
	_, err := store.Load("")
	if !errors.Is(err, kerrors.ErrDecryptFailed) && !errors.Is(err, kerrors.ErrInvalidPayload) {
		t.Fatalf("Expected decryption failure, got: %v", err)
	}
}
