package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/configs"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := setupTestDir(t)

	_, stderr, err := runCLI(t, "encrypt", "-k", "s3cr3t", "-e", "API_KEY=abc123", "-e", "DEBUG=true")
	if err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "Encrypted '2' variables") {
		t.Errorf("Expected success message, got: %s", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, secrets.DefaultStorePath)); err != nil {
		t.Fatalf("Expected store file to exist: %v", err)
	}

	stdout, stderr, err := runCLI(t, "decrypt", "-k", "s3cr3t")
	if err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, stderr)
	}
	if want := "API_KEY=abc123\nDEBUG=true\n"; stdout != want {
		t.Errorf("Expected stdout %q, got %q", want, stdout)
	}
}

func TestEncryptReadsDefaultEnvFile(t *testing.T) {
	dir := setupTestDir(t)
	writeFile(t, filepath.Join(dir, ".env"), "TOKEN=xyz\n")

	if _, stderr, err := runCLI(t, "encrypt", "-k", "k", "-a", "rabbit"); err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}

	store := secrets.NewStore(secrets.Options{Key: "k", StorePath: filepath.Join(dir, secrets.DefaultStorePath)})
	decrypted, err := store.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if decrypted.Algorithm != "rabbit" || decrypted.Vars["TOKEN"] != "xyz" {
		t.Errorf("Unexpected store content: %+v", decrypted)
	}
}

func TestEncryptWithoutVariablesFails(t *testing.T) {
	setupTestDir(t)

	_, stderr, err := runCLI(t, "encrypt", "-k", "k")
	if err == nil {
		t.Fatal("Expected error when there is nothing to encrypt")
	}
	if !IsReported(err) {
		t.Errorf("Expected a reported error, got %v", err)
	}
	if !strings.Contains(stderr, "No environment variables to encrypt") {
		t.Errorf("Expected hint in stderr, got: %s", stderr)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	setupTestDir(t)

	if _, stderr, err := runCLI(t, "encrypt", "-k", "right", "-e", "A=1"); err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, "decrypt", "-k", "wrong")
	if err == nil {
		t.Fatal("Expected error with the wrong key")
	}
	if stdout != "" {
		t.Errorf("Expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "Check that the key matches") {
		t.Errorf("Expected key hint, got: %s", stderr)
	}
}

func TestDecryptToOutputFile(t *testing.T) {
	dir := setupTestDir(t)

	if _, stderr, err := runCLI(t, "encrypt", "-k", "k", "-e", "NAME=value with spaces"); err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, "decrypt", "-k", "k", "-o", "out.env")
	if err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, stderr)
	}
	if stdout != "" {
		t.Errorf("Expected no stdout with --output, got %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.env"))
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(data), `NAME="value with spaces"`) {
		t.Errorf("Unexpected output file: %s", data)
	}
}

func TestDecryptOutputFeedsEncrypt(t *testing.T) {
	setupTestDir(t)

	if _, stderr, err := runCLI(t, "encrypt", "-k", "k", "-e", `QUOTE=say "hi"`, "-e", `WIN=C:\dir\`); err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}
	if _, stderr, err := runCLI(t, "decrypt", "-k", "k", "-o", "out.env"); err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, stderr)
	}
	if _, stderr, err := runCLI(t, "encrypt", "-k", "k", "--env-file", "out.env", "-f", "again.store"); err != nil {
		t.Fatalf("encrypt --env-file failed: %v\n%s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, "decrypt", "-k", "k", "-f", "again.store")
	if err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, stderr)
	}
	if want := "QUOTE=say \"hi\"\nWIN=C:\\dir\\\n"; stdout != want {
		t.Errorf("Expected stdout %q, got %q", want, stdout)
	}
}

func TestDefaultKeyWarning(t *testing.T) {
	setupTestDir(t)

	_, stderr, err := runCLI(t, "encrypt", "-e", "A=1")
	if err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "built-in default key") {
		t.Errorf("Expected default key warning, got: %s", stderr)
	}

	stdout, stderr, err := runCLI(t, "decrypt")
	if err != nil {
		t.Fatalf("decrypt failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "built-in default key") {
		t.Errorf("Expected default key warning on decrypt, got: %s", stderr)
	}
	if !strings.Contains(stdout, "A=") {
		t.Errorf("Expected decrypted variable on stdout, got: %s", stdout)
	}

	_, stderr, err = runCLI(t, "decrypt", "--strict")
	if err == nil {
		t.Fatal("Expected --strict to fail without a key")
	}
	if !strings.Contains(stderr, "No encryption key found") {
		t.Errorf("Expected missing key message, got: %s", stderr)
	}
}

func TestListMasksValues(t *testing.T) {
	setupTestDir(t)

	if _, stderr, err := runCLI(t, "encrypt", "-k", "k", "-e", "API_KEY=abc123", "-e", "DEBUG=true"); err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}

	stdout, stderr, err := runCLI(t, "list", "-k", "k")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, stderr)
	}
	for _, want := range []string{".env.store", "'API_KEY' = ab****", "'DEBUG' = ****", "2 variables"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, "list", "-k", "k", "--show-values")
	if err != nil {
		t.Fatalf("list --show-values failed: %v", err)
	}
	if !strings.Contains(stdout, "'API_KEY' = abc123") {
		t.Errorf("Expected unmasked value, got:\n%s", stdout)
	}
}

func TestListGlobReportsFailures(t *testing.T) {
	dir := setupTestDir(t)

	if _, _, err := runCLI(t, "encrypt", "-k", "k", "-e", "A=1", "-f", "stores/a.store"); err != nil {
		t.Fatalf("encrypt a failed: %v", err)
	}
	if _, _, err := runCLI(t, "encrypt", "-k", "other", "-e", "B=2", "-f", "stores/b.store"); err != nil {
		t.Fatalf("encrypt b failed: %v", err)
	}

	stdout, stderr, err := runCLI(t, "list", "-k", "k", "-f", filepath.Join(dir, "stores", "*.store"))
	if err == nil {
		t.Fatal("Expected error when one store cannot be decrypted")
	}
	if !strings.Contains(stdout, "'A'") {
		t.Errorf("Expected the readable store to be listed, got:\n%s", stdout)
	}
	if !strings.Contains(stderr, "1 of 2 stores could not be decrypted") {
		t.Errorf("Expected failure summary, got: %s", stderr)
	}
}

func TestSetKeyGenerateAndUse(t *testing.T) {
	dir := setupTestDir(t)

	_, stderr, err := runCLI(t, "set-key", "--generate")
	if err != nil {
		t.Fatalf("set-key failed: %v\n%s", err, stderr)
	}

	keyPath := filepath.Join(dir, secrets.DefaultKeyFilePath)
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("Expected key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != secrets.KeyFileMode {
		t.Errorf("Expected mode %o, got %o", secrets.KeyFileMode, perm)
	}

	_, stderr, err = runCLI(t, "encrypt", "-e", "A=1")
	if err != nil {
		t.Fatalf("encrypt failed: %v\n%s", err, stderr)
	}
	if strings.Contains(stderr, "built-in default key") {
		t.Errorf("Did not expect default key warning with a key file: %s", stderr)
	}

	stdout, _, err := runCLI(t, "decrypt", "--strict")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if stdout != "A=1\n" {
		t.Errorf("Unexpected output %q", stdout)
	}
}

func TestSetKeyWithoutKeyNonInteractive(t *testing.T) {
	setupTestDir(t)

	_, stderr, err := runCLI(t, "set-key")
	if err == nil {
		t.Fatal("Expected error without a key outside a terminal")
	}
	if !strings.Contains(stderr, "The encryption key is empty") {
		t.Errorf("Expected empty key message, got: %s", stderr)
	}
}

func TestSetKeyOverwritesOutsideTerminal(t *testing.T) {
	dir := setupTestDir(t)

	if _, _, err := runCLI(t, "set-key", "-k", "first"); err != nil {
		t.Fatalf("set-key failed: %v", err)
	}
	_, stderr, err := runCLI(t, "set-key", "-k", "second")
	if err != nil {
		t.Fatalf("second set-key failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "previous key was replaced") {
		t.Errorf("Expected replacement warning, got: %s", stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, secrets.DefaultKeyFilePath))
	if err != nil {
		t.Fatalf("Failed to read key file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "second" {
		t.Errorf("Expected key to be replaced, got %q", data)
	}
}

func TestSetKeyRejectsKeyAndGenerate(t *testing.T) {
	setupTestDir(t)

	if _, _, err := runCLI(t, "set-key", "-k", "a", "--generate"); err == nil {
		t.Fatal("Expected --key and --generate to be mutually exclusive")
	}
}

func TestInitCreatesProject(t *testing.T) {
	dir := setupTestDir(t)

	_, stderr, err := runCLI(t, "init", "--format", "yaml", "-a", "aes-256-cbc", "--audit-log", ".env-store.log")
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, stderr)
	}

	config, err := configs.Load(filepath.Join(dir, "env-store.config.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Algorithm != "aes-256-cbc" || config.AuditLogPath != ".env-store.log" {
		t.Errorf("Unexpected config: %+v", config)
	}
	if _, err := os.Stat(filepath.Join(dir, secrets.DefaultKeyFilePath)); err != nil {
		t.Errorf("Expected key file: %v", err)
	}

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("Expected .gitignore: %v", err)
	}
	if !strings.Contains(string(gitignore), secrets.DefaultKeyFilePath) {
		t.Errorf("Expected key file in .gitignore, got:\n%s", gitignore)
	}

	// The config is found from a subdirectory.
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}
	if _, stderr, err := runCLI(t, "encrypt", "-e", "A=1"); err != nil {
		t.Fatalf("encrypt from subdirectory failed: %v\n%s", err, stderr)
	}
	store := secrets.NewStore(secrets.Options{KeyFilePath: filepath.Join(dir, secrets.DefaultKeyFilePath), StorePath: filepath.Join(dir, secrets.DefaultStorePath)})
	decrypted, err := store.Load("")
	if err != nil {
		t.Fatalf("Expected store in project root: %v", err)
	}
	if decrypted.Algorithm != "aes-256-cbc" {
		t.Errorf("Expected configured algorithm, got %s", decrypted.Algorithm)
	}
}

func TestInitTwiceFails(t *testing.T) {
	setupTestDir(t)

	if _, _, err := runCLI(t, "init", "--no-gitignore"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	_, stderr, err := runCLI(t, "init", "--no-gitignore")
	if err == nil {
		t.Fatal("Expected second init to fail")
	}
	if !strings.Contains(stderr, "--force") {
		t.Errorf("Expected --force hint, got: %s", stderr)
	}

	if _, _, err := runCLI(t, "init", "--no-gitignore", "--force"); err != nil {
		t.Errorf("Expected init --force to succeed: %v", err)
	}
}

func TestInitUnsupportedFormat(t *testing.T) {
	setupTestDir(t)

	_, stderr, err := runCLI(t, "init", "--format", "ini")
	if err == nil {
		t.Fatal("Expected unsupported format to fail")
	}
	if !strings.Contains(stderr, "json, toml, yaml") {
		t.Errorf("Expected supported formats in hint, got: %s", stderr)
	}
}

func TestLogShowsOperations(t *testing.T) {
	dir := setupTestDir(t)

	if _, _, err := runCLI(t, "init", "--no-gitignore", "--audit-log", "audit.log"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, _, err := runCLI(t, "encrypt", "-e", "SECRET=hunter2"); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, _, err := runCLI(t, "decrypt"); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	if err != nil {
		t.Fatalf("Expected audit log: %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Error("Audit log must not contain values")
	}

	stdout, stderr, err := runCLI(t, "log", "--json", "--operation", "encrypt,decrypt")
	if err != nil {
		t.Fatalf("log failed: %v\n%s", err, stderr)
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, stdout)
	}
	if len(entries) != 2 || entries[0].Operation != audit.OpEncrypt || entries[1].Operation != audit.OpDecrypt {
		t.Errorf("Unexpected entries: %+v", entries)
	}

	stdout, _, err = runCLI(t, "log", "-n", "1", "--reverse")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != 1 || !strings.Contains(lines[0], "decrypt") {
		t.Errorf("Expected only the latest decrypt entry, got:\n%s", stdout)
	}
}

func TestLogDisabled(t *testing.T) {
	setupTestDir(t)

	_, stderr, err := runCLI(t, "log")
	if err == nil {
		t.Fatal("Expected error when the audit log is not configured")
	}
	if !strings.Contains(stderr, "audit-log-path") {
		t.Errorf("Expected config hint, got: %s", stderr)
	}
}

func TestLogInvalidDate(t *testing.T) {
	setupTestDir(t)
	if _, _, err := runCLI(t, "init", "--no-gitignore", "--audit-log", "audit.log"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, _, err := runCLI(t, "log", "--since", "yesterday"); err == nil {
		t.Fatal("Expected invalid date to fail")
	}
}

func TestDoctor(t *testing.T) {
	setupTestDir(t)

	if _, _, err := runCLI(t, "init", "--no-gitignore"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, _, err := runCLI(t, "encrypt", "-e", "A=1"); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	stdout, stderr, err := runCLI(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, stderr)
	}
	var result struct {
		Summary struct {
			Errors int `json:"errors"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, stdout)
	}
	if result.Summary.Errors != 0 {
		t.Errorf("Expected no errors, got:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "doctor", "-k", "wrong")
	if err == nil {
		t.Fatal("Expected doctor to fail when the store cannot be opened")
	}
	if !strings.Contains(stdout, "Cannot open") {
		t.Errorf("Expected store failure in output, got:\n%s", stdout)
	}
}
