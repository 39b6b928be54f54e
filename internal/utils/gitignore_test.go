package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEnsureIgnored_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	added, err := EnsureIgnored(dir, []string{".env.store.key", ".env"})
	if err != nil {
		t.Fatalf("EnsureIgnored() error = %v", err)
	}
	if !reflect.DeepEqual(added, []string{".env.store.key", ".env"}) {
		t.Errorf("added = %v", added)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("Failed to read .gitignore: %v", err)
	}
	if !strings.Contains(string(data), ".env.store.key\n") || !strings.Contains(string(data), ".env\n") {
		t.Errorf(".gitignore = %q", data)
	}
}

func TestEnsureIgnored_SkipsMatched(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules/\n*.key"), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	added, err := EnsureIgnored(dir, []string{".env.store.key", ".env.decrypted", ".env.decrypted"})
	if err != nil {
		t.Fatalf("EnsureIgnored() error = %v", err)
	}
	if !reflect.DeepEqual(added, []string{".env.decrypted"}) {
		t.Errorf("added = %v", added)
	}

	data, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if !strings.HasPrefix(string(data), "node_modules/\n*.key\n") {
		t.Errorf("Expected existing content kept with newline fixed, got %q", data)
	}
}

func TestEnsureIgnored_NothingToAdd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".env*\n"), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	added, err := EnsureIgnored(dir, []string{".env", ".env.store.key"})
	if err != nil {
		t.Fatalf("EnsureIgnored() error = %v", err)
	}
	if len(added) != 0 {
		t.Errorf("added = %v", added)
	}
}

func TestIsIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("# secrets\nsecrets/\n!keep.key\n*.key\n"), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	tests := map[string]bool{
		"a.key":           true,
		"secrets/x.env":   true,
		".env.store":      false,
		"nested/b.key":    true,
		"plain/file.json": false,
	}
	for path, want := range tests {
		got, err := IsIgnored(dir, path)
		if err != nil {
			t.Fatalf("IsIgnored(%q) error = %v", path, err)
		}
		if got != want {
			t.Errorf("IsIgnored(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestRepositoryRoot_NotARepo(t *testing.T) {
	if _, ok := RepositoryRoot(t.TempDir()); ok {
		t.Error("Expected temp dir not to be a git repository")
	}
}
