package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestDir changes into a fresh temporary directory for the test.
func setupTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
	})

	// Keep test output free of escape codes.
	t.Setenv("NO_COLOR", "1")
	return dir
}

// createTestCLI creates a fresh root command with every subcommand and the
// given arguments. Flag values left over from earlier runs are reset.
func createTestCLI(args ...string) *cobra.Command {
	resetFlags()

	root := &cobra.Command{Use: "envstore"}
	Register(root)
	root.SetArgs(args)
	return root
}

// resetFlags restores every subcommand flag to its default.
func resetFlags() {
	verbose = false
	debug = false
	configPath = ""

	for _, c := range commands {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
}

// runCLI executes the CLI with args and returns stdout and stderr separately.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	stdout, stderr, err = captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
	return stdout, stderr, err
}

// captureOutput captures stdout and stderr during function execution.
func captureOutput(fn func() error) (string, string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, err := os.Pipe()
	if err != nil {
		return "", "", err
	}
	stderrReader, stderrWriter, err := os.Pipe()
	if err != nil {
		return "", "", err
	}

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)
	collect := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		out <- buf.String()
	}
	go collect(stdoutReader, stdoutChan)
	go collect(stderrReader, stderrChan)

	runErr := fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, runErr
}
