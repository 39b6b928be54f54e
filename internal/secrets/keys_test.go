package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

func TestResolveKey(t *testing.T) {
	tmpDir := t.TempDir()

	keyFile := filepath.Join(tmpDir, ".env.store.key")
	writeTestFile(t, keyFile, "  file-key\n")

	blankKeyFile := filepath.Join(tmpDir, "blank.key")
	writeTestFile(t, blankKeyFile, " \n\t")

	missingKeyFile := filepath.Join(tmpDir, "missing.key")

	tests := []struct {
		name       string
		explicit   string
		keyFile    string
		defaultKey string
		wantValue  string
		wantSource KeySource
	}{
		{"ExplicitWinsOverFile", "explicit-key", keyFile, "default-key", "explicit-key", KeySourceExplicit},
		{"FileWinsOverDefault", "", keyFile, "default-key", "file-key", KeySourceFile},
		{"MissingFileUsesDefault", "", missingKeyFile, "default-key", "default-key", KeySourceDefault},
		{"BlankFileUsesDefault", "", blankKeyFile, "default-key", "default-key", KeySourceDefault},
		{"NoFilePathUsesDefault", "", "", "default-key", "default-key", KeySourceDefault},
		{"ExplicitWithoutDefault", "explicit-key", missingKeyFile, "", "explicit-key", KeySourceExplicit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ResolveKey(tt.explicit, tt.keyFile, tt.defaultKey)
			if err != nil {
				t.Fatalf("ResolveKey() error = %v", err)
			}
			if key.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", key.Value, tt.wantValue)
			}
			if key.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", key.Source, tt.wantSource)
			}
		})
	}
}

func TestResolveKey_FileSourceRecordsPath(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	writeTestFile(t, keyFile, "abc")

	key, err := ResolveKey("", keyFile, "")
	if err != nil {
		t.Fatalf("ResolveKey() error = %v", err)
	}
	if key.Path != keyFile {
		t.Errorf("Path = %q, want %q", key.Path, keyFile)
	}
}

func TestResolveKey_StrictWithoutDefault(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := ResolveKey("", filepath.Join(tmpDir, "missing.key"), "")
	if !errors.Is(err, kerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got: %v", err)
	}

	blank := filepath.Join(tmpDir, "blank.key")
	writeTestFile(t, blank, "\n")
	_, err = ResolveKey("", blank, "")
	if !errors.Is(err, kerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound for blank key file, got: %v", err)
	}
}

func TestResolveKey_Idempotent(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	writeTestFile(t, keyFile, "stable-key\n")

	first, err := ResolveKey("", keyFile, InsecureDefaultKey)
	if err != nil {
		t.Fatalf("first ResolveKey() error = %v", err)
	}
	second, err := ResolveKey("", keyFile, InsecureDefaultKey)
	if err != nil {
		t.Fatalf("second ResolveKey() error = %v", err)
	}

	if first != second {
		t.Errorf("Expected identical keys, got %+v and %+v", first, second)
	}
}

func TestResolveKey_ReadsFileFresh(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	writeTestFile(t, keyFile, "old-key")

	if key, _ := ResolveKey("", keyFile, ""); key.Value != "old-key" {
		t.Fatalf("Value = %q, want old-key", key.Value)
	}

	writeTestFile(t, keyFile, "new-key")

	if key, _ := ResolveKey("", keyFile, ""); key.Value != "new-key" {
		t.Errorf("Value = %q, want new-key", key.Value)
	}
}

func TestResolveKey_UnreadableKeyFile(t *testing.T) {
	// A directory cannot be read as a file.
	dir := t.TempDir()

	_, err := ResolveKey("", dir, InsecureDefaultKey)
	if !errors.Is(err, kerrors.ErrIO) {
		t.Fatalf("Expected ErrIO, got: %v", err)
	}
}

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(first) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(first))
	}

	second, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if first == second {
		t.Error("Expected two generated keys to differ")
	}
}

// writeTestFile is a helper to write test files with 0644 permissions.
// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}
