package cmd

import (
	"context"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	setKeyValue    string
	setKeyFile     string
	setKeyGenerate bool
	setKeyForce    bool
)

func init() {
	setKeyCmd.Flags().StringVarP(&setKeyValue, "key", "k", "", "key to store (prompted when omitted)")
	setKeyCmd.Flags().StringVarP(&setKeyFile, "file", "f", "", "key file to write (default from config)")
	setKeyCmd.Flags().BoolVar(&setKeyGenerate, "generate", false, "generate a random 256-bit key")
	setKeyCmd.Flags().BoolVar(&setKeyForce, "force", false, "overwrite an existing key file without asking")
	setKeyCmd.MarkFlagsMutuallyExclusive("key", "generate")
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Writes the encryption key file",
	Long: `Writes the encryption key to the key file with owner-only permissions.

The key file is read by every other command, so stores can be encrypted and
decrypted without passing --key. Existing stores are not re-encrypted; keep
the old key until they have been decrypted and encrypted again.

Examples:
  envstore set-key                 # Prompt for the key
  envstore set-key --generate      # Random key
  envstore set-key -k "$ENV_KEY" -f ci.key`,
	RunE: runSetKey,
}

func runSetKey(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting set-key command")

	project, err := loadProject()
	if err != nil {
		return reportNow(err)
	}

	key := setKeyValue
	if key == "" && !setKeyGenerate {
		if !utils.IsTerminal() {
			return reportNow(kerrors.ErrEmptyKey)
		}
		if key, err = utils.ReadSecret("Encryption key: "); err != nil {
			return reportNow(err)
		}
	}

	force := setKeyForce
	if !force {
		exists, err := workflows.KeyFileExists(project, setKeyFile)
		if err != nil {
			return reportNow(err)
		}
		if exists {
			// Without a terminal there is nobody to ask.
			force = !utils.IsInteractive()
			if !force {
				path := workflows.KeyFilePath(project, setKeyFile)
				ok, err := confirm("Overwrite "+path+"?", "Stores encrypted with the current key will need it to be decrypted.")
				if err != nil {
					return reportNow(err)
				}
				if !ok {
					cmd.PrintErrln(ui.WarningLine("Cancelled, key file unchanged"))
					return nil
				}
				force = true
			}
		}
	}

	s, cleanup := startSpinner("Writing key file...")
	defer cleanup()

	result, err := workflows.SetKey(context.Background(), workflows.SetKeyOptions{
		Project:  project,
		Key:      key,
		KeyFile:  setKeyFile,
		Generate: setKeyGenerate,
		Force:    force,
	})
	if err != nil {
		return fail(s, err)
	}

	verb := "Saved"
	if result.Generated {
		verb = "Generated"
	}
	msg := ui.SuccessLine(verb + " key in " + ui.Path.Sprint(result.KeyFile))
	if result.Replaced {
		msg += "\n" + ui.WarningLine("The previous key was replaced; stores encrypted with it need the old key")
	}
	s.FinalMSG = msg + "\n" + ui.Info.Sprint("→") + " Never commit " + ui.Path.Sprint(result.KeyFile)
	return nil
}

// reportNow prints err immediately, for failures before a spinner exists.
func reportNow(err error) error {
	Logger.Errorf("%v", err)
	printErr(formatError(err))
	return &reportedError{err: err}
}
