package cmd

import (
	"os"

	"github.com/PolarWolf314/envstore/internal/configs"
	logger "github.com/PolarWolf314/envstore/internal/logging"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	// commands lists every subcommand registered on the root.
	commands = []*cobra.Command{
		initCmd,
		encryptCmd,
		decryptCmd,
		listCmd,
		setKeyCmd,
		logCmd,
		doctorCmd,
	}
)

// Register adds the persistent flags and all subcommands to root.
func Register(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: env-store.config.{json,toml,yaml,yml})")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Running %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
	}

	root.SilenceErrors = true
	root.SilenceUsage = true

	for _, c := range commands {
		root.AddCommand(c)
	}
}

// loadProject finds the project from --config, or by walking up from the
// working directory to the nearest config file. Without one the working
// directory is used with defaults.
func loadProject() (*workflows.Project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, Logger.ErrorfAndReturn("failed to get working directory: %w", err)
	}

	dir := wd
	if configPath == "" {
		found, err := utils.FindUp(wd, func(d string) bool {
			_, ok := configs.Discover(d)
			return ok
		})
		if err != nil {
			return nil, err
		}
		if found != "" {
			dir = found
		}
	}

	project, err := workflows.LoadProject(dir, configPath)
	if err != nil {
		return nil, err
	}

	if project.ConfigPath != "" {
		Logger.Infof("Using config %s", project.ConfigPath)
	} else {
		Logger.Infof("No config file found, using defaults in %s", project.Dir)
	}
	Logger.Debugf("Config: %+v", *project.Config)

	return project, nil
}
