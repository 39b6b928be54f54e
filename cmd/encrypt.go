package cmd

import (
	"context"
	"strings"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	encryptKeys      keyFlags
	encryptStorePath string
	encryptAlgorithm string
	encryptEnv       []string
	encryptEnvFile   string
)

func init() {
	encryptKeys.register(encryptCmd)
	encryptCmd.Flags().StringVarP(&encryptStorePath, "file", "f", "", "store file to write (default from config)")
	encryptCmd.Flags().StringVarP(&encryptAlgorithm, "algorithm", "a", "", "cipher: "+strings.Join(ciphers.Names(), ", "))
	encryptCmd.Flags().StringArrayVarP(&encryptEnv, "env", "e", nil, "variable as KEY=VALUE (repeatable)")
	encryptCmd.Flags().StringVar(&encryptEnvFile, "env-file", "", "dotenv file to read, or - for stdin")
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypts environment variables into the store file",
	Long: `Encrypts environment variables into a single store file that is safe to commit.

Variables come from --env and --env-file. Values from --env win. With neither
flag the configured env file (.env by default) is read.

Examples:
  envstore encrypt                                  # Encrypt .env
  envstore encrypt -e API_KEY=abc123 -e DEBUG=true  # Encrypt given variables
  envstore encrypt --env-file .env.production -f prod.store
  cat .env | envstore encrypt --env-file -          # Read from stdin
  envstore encrypt -a aes-256-cbc -k "$ENV_KEY"     # Choose cipher and key`,
	RunE: runEncrypt,
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting encrypt command")
	s, cleanup := startSpinner("Encrypting environment variables...")
	defer cleanup()

	project, err := loadProject()
	if err != nil {
		return fail(s, err)
	}

	opts := workflows.EncryptOptions{
		Project:     project,
		Keys:        encryptKeys.options(),
		StorePath:   encryptStorePath,
		Algorithm:   encryptAlgorithm,
		Assignments: encryptEnv,
		EnvFile:     encryptEnvFile,
	}

	if encryptEnvFile == "-" {
		Logger.Debugf("Reading env content from stdin")
		content, err := utils.ReadStdin()
		if err != nil {
			return fail(s, err)
		}
		opts.EnvContent = content
		opts.EnvFile = ""
	}

	result, err := workflows.Encrypt(context.Background(), opts)
	if err != nil {
		return fail(s, err)
	}

	pauseSpinner(s, func() {
		if result.UnknownAlgorithm != "" {
			Logger.WarnfAlways("Unknown algorithm %q, using %s", result.UnknownAlgorithm, result.Algorithm)
		}
		warnDefaultKey(result.Key)
	})

	Logger.Infof("Encrypted %d variables from %s", len(result.Variables), strings.Join(result.Sources, ", "))
	Logger.Debugf("Variables: %s", strings.Join(result.Variables, ", "))

	s.FinalMSG = ui.SuccessLine("Encrypted "+ui.Highlight.Sprintf("%d", len(result.Variables))+" "+
		utils.Plural(len(result.Variables), "variable")+" into "+ui.Path.Sprint(result.StorePath)) + "\n" +
		"  " + ui.Muted.Sprint(string(result.Algorithm)+", "+describeKey(result.Key)) + "\n" +
		ui.Info.Sprint("→") + " You can safely commit " + ui.Path.Sprint(result.StorePath)
	return nil
}
