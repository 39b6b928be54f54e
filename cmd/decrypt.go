package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/envstore/internal/dotenv"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	decryptKeys       keyFlags
	decryptStorePath  string
	decryptAlgorithm  string
	decryptOutputPath string
)

func init() {
	decryptKeys.register(decryptCmd)
	decryptCmd.Flags().StringVarP(&decryptStorePath, "file", "f", "", "store file to read (default from config)")
	decryptCmd.Flags().StringVarP(&decryptAlgorithm, "algorithm", "a", "", "cipher for stores without an algorithm tag")
	decryptCmd.Flags().StringVarP(&decryptOutputPath, "output", "o", "", "write a dotenv file instead of printing")
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypts the store file",
	Long: `Decrypts the store file and prints the variables as KEY=value lines,
sorted by name. With --output, or decrypted-file-path in the config, a dotenv
file is written with owner-only permissions instead.

The algorithm is read from the store itself. --algorithm only matters for
stores written before algorithm tags existed.

Examples:
  envstore decrypt                        # Print variables
  envstore decrypt -o .env                # Write .env
  envstore decrypt -f prod.store -k "$KEY"
  envstore decrypt -a tripledes           # Legacy store encrypted with tripledes`,
	RunE: runDecrypt,
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting decrypt command")
	s, cleanup := startSpinner("Decrypting store...")
	defer cleanup()

	project, err := loadProject()
	if err != nil {
		return fail(s, err)
	}

	result, err := workflows.Decrypt(context.Background(), workflows.DecryptOptions{
		Project:    project,
		Keys:       decryptKeys.options(),
		StorePath:  decryptStorePath,
		Algorithm:  decryptAlgorithm,
		OutputPath: decryptOutputPath,
	})
	if err != nil {
		return fail(s, err)
	}

	pauseSpinner(s, func() {
		warnDefaultKey(result.Key)
	})

	tag := "tagged"
	if !result.Tagged {
		tag = "untagged"
		Logger.Warnf("%s has no algorithm tag, used %s", result.StorePath, result.Algorithm)
	}
	Logger.Infof("Decrypted %s with %s (%s)", result.StorePath, result.Algorithm, tag)

	if result.OutputPath == "" {
		// Stop the spinner before writing to stdout.
		cleanup()
		for _, line := range dotenv.Lines(result.Vars) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}

	s.FinalMSG = ui.SuccessLine("Decrypted "+ui.Highlight.Sprintf("%d", len(result.Vars))+" "+
		utils.Plural(len(result.Vars), "variable")+" into "+ui.Path.Sprint(result.OutputPath)) + "\n" +
		"  " + ui.Muted.Sprint(strings.Join([]string{string(result.Algorithm), tag, describeKey(result.Key)}, ", ")) + "\n" +
		ui.Info.Sprint("→") + " Do not commit " + ui.Path.Sprint(result.OutputPath)
	return nil
}
