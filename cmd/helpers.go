package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/secrets"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// reportedError is returned once the failure has been shown to the user,
// so main only sets the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by a command.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail sets the spinner's final message for err and returns a reported error.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	return &reportedError{err: err}
}

// formatError turns a workflow error into a message with a hint.
func formatError(err error) string {
	hint := func(msg, action string) string {
		return ui.ErrorLine(msg) + "\n" + ui.Info.Sprint("→") + " " + action
	}

	switch {
	case errors.Is(err, kerrors.ErrKeyNotFound):
		return hint("No encryption key found",
			"Pass "+ui.Flag.Sprint("--key")+" or run "+ui.Code.Sprint("envstore set-key --generate"))

	case errors.Is(err, kerrors.ErrDecryptFailed), errors.Is(err, kerrors.ErrInvalidPayload):
		return hint("Failed to decrypt the store: "+err.Error(),
			"Check that the key matches the one used to encrypt it")

	case errors.Is(err, kerrors.ErrNoVariables):
		return hint("No environment variables to encrypt",
			"Pass "+ui.Flag.Sprint("--env KEY=VALUE")+" or "+ui.Flag.Sprint("--env-file")+", or create a "+ui.Path.Sprint(".env")+" file")

	case errors.Is(err, kerrors.ErrInvalidVariable):
		return hint(err.Error(), "Variables must look like "+ui.Code.Sprint("KEY=VALUE"))

	case errors.Is(err, kerrors.ErrFileNotFound):
		return ui.ErrorLine(err.Error())

	case errors.Is(err, kerrors.ErrAlreadyInitialized), errors.Is(err, kerrors.ErrKeyFileExists):
		return hint(err.Error(), "Use "+ui.Flag.Sprint("--force")+" to overwrite")

	case errors.Is(err, kerrors.ErrAuditDisabled):
		return hint("The audit log is not enabled",
			"Set "+ui.Highlight.Sprint("audit-log-path")+" in the config file")

	case errors.Is(err, kerrors.ErrEmptyKey):
		return hint("The encryption key is empty",
			"Pass "+ui.Flag.Sprint("--key")+" or "+ui.Flag.Sprint("--generate"))

	default:
		return ui.ErrorLine(err.Error())
	}
}

// startSpinner creates a spinner on stderr and starts it unless running in
// verbose or debug mode or stderr is not a terminal.
// Returns the spinner and a function that should be deferred to clean up.
//
// FinalMSG values do not need trailing newlines. The cleanup function
// prints the final message to stderr with ui.EnsureNewline, so stdout only
// carries command output.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	animate := !verbose && !debug && utils.IsErrorTerminal()
	if animate {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if animate {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(os.Stderr, finalMsg)
		}
	}

	return s, cleanup
}

// pauseSpinner stops the spinner while fn writes to the terminal.
func pauseSpinner(s *spinner.Spinner, fn func()) {
	active := s.Active()
	if active {
		s.Stop()
	}
	fn()
	if active {
		s.Start()
	}
}

// confirm asks a yes/no question. It returns false without asking when the
// session is not interactive.
func confirm(title, description string) (bool, error) {
	if !utils.IsInteractive() {
		return false, nil
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, overwrite").
				Negative("Cancel").
				Value(&ok),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation form: %w", err)
	}
	return ok, nil
}

// keyFlags are the key selection flags shared by the store commands.
type keyFlags struct {
	key     string
	keyFile string
	strict  bool
}

func (f *keyFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.key, "key", "k", "", "encryption key (overrides the key file)")
	c.Flags().StringVar(&f.keyFile, "key-file", "", "file holding the encryption key (default from config)")
	c.Flags().BoolVar(&f.strict, "strict", false, "fail instead of using the built-in default key")
}

func (f *keyFlags) options() workflows.KeyOptions {
	return workflows.KeyOptions{Key: f.key, KeyFile: f.keyFile, Strict: f.strict}
}

// warnDefaultKey warns when the public default key was used.
func warnDefaultKey(key secrets.Key) {
	if key.Source == secrets.KeySourceDefault {
		Logger.WarnfAlways("Using the built-in default key; anyone with envstore can decrypt this store. Run 'envstore set-key --generate' to use a private key.")
	}
}

// describeKey renders where the key came from.
func describeKey(key secrets.Key) string {
	switch key.Source {
	case secrets.KeySourceFile:
		return "key file " + ui.Path.Sprint(key.Path)
	case secrets.KeySourceExplicit:
		return "key from " + ui.Flag.Sprint("--key")
	default:
		return ui.Warning.Sprint("default key")
	}
}

// printErr writes msg to stderr on its own line.
func printErr(msg string) {
	fmt.Fprint(os.Stderr, ui.EnsureNewline(msg))
}
