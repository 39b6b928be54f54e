package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/PolarWolf314/envstore/internal/configs"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	initFormat      string
	initAlgorithm   string
	initAuditLog    string
	initForce       bool
	initNoGitignore bool
)

func init() {
	initCmd.Flags().StringVar(&initFormat, "format", "json", "config file format ("+strings.Join(configs.FormatNames(), ", ")+")")
	initCmd.Flags().StringVarP(&initAlgorithm, "algorithm", "a", "", "cipher for new stores (default aes)")
	initCmd.Flags().StringVar(&initAuditLog, "audit-log", "", "enable the audit log at this path")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing config file")
	initCmd.Flags().BoolVar(&initNoGitignore, "no-gitignore", false, "do not touch .gitignore")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initializes the env store in the current directory",
	Long: `Writes a config file with defaults, generates a random key file unless one
already exists, and adds the key file and plaintext env files to .gitignore.

Examples:
  envstore init                          # env-store.config.json
  envstore init --format yaml            # env-store.config.yaml
  envstore init -a aes-256-cbc --audit-log .env-store.log`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting init command")

	wd, err := os.Getwd()
	if err != nil {
		return reportNow(Logger.ErrorfAndReturn("failed to get working directory: %w", err))
	}

	force := initForce
	if existing, ok := configs.Discover(wd); ok && !force && utils.IsInteractive() {
		ok, err := confirm("Replace "+existing+"?", "The existing key file is kept.")
		if err != nil {
			return reportNow(err)
		}
		if !ok {
			cmd.PrintErrln(ui.WarningLine("Cancelled, config unchanged"))
			return nil
		}
		force = true
	}

	s, cleanup := startSpinner("Initializing env store...")
	defer cleanup()

	result, err := workflows.Init(context.Background(), workflows.InitOptions{
		Dir:           wd,
		Format:        initFormat,
		Algorithm:     initAlgorithm,
		AuditLogPath:  initAuditLog,
		Force:         force,
		SkipGitignore: initNoGitignore,
	})
	if err != nil {
		if errors.Is(err, kerrors.ErrUnsupportedFormat) {
			Logger.Errorf("%v", err)
			s.FinalMSG = ui.ErrorLine(err.Error()) + "\n" + ui.Info.Sprint("→") + " Use one of " + ui.Code.Sprint(strings.Join(configs.FormatNames(), ", "))
			return &reportedError{err: err}
		}
		return fail(s, err)
	}
	Logger.Infof("Wrote %s", result.ConfigPath)

	var b strings.Builder
	b.WriteString(ui.SuccessLine("Env store initialized in " + ui.Path.Sprint(result.ConfigPath)))
	if result.KeyGenerated {
		b.WriteString("\n" + ui.SuccessLine("Generated key file "+ui.Path.Sprint(result.KeyFile)))
	} else {
		b.WriteString("\n" + ui.Muted.Sprint("Kept existing key file") + " " + ui.Path.Sprint(result.KeyFile))
	}
	if len(result.Ignored) > 0 {
		b.WriteString("\n" + ui.SuccessLine("Added "+utils.FormatPaths(result.Ignored)+" to "+ui.Path.Sprint(result.GitignorePath)))
	}
	b.WriteString("\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("envstore encrypt") + " to encrypt your .env file")
	s.FinalMSG = b.String()
	return nil
}
