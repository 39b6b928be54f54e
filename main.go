package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/envstore/cmd"
	"github.com/PolarWolf314/envstore/internal/ui"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "envstore",
	Short: "envstore - Encrypted storage for environment variables.",
	Long: `envstore keeps environment variables in a single encrypted file that is safe
to commit, and turns it back into KEY=value pairs or a .env file on demand.

Usage:
  envstore <command> [flags]

Run 'envstore help <command>' for more details on a specific command.
`,
	Run: func(c *cobra.Command, args []string) {
		figure.NewFigure("envstore", "small", true).Print()
		fmt.Println()
		fmt.Println("Run 'envstore --help' to see available commands.")
	},
}

func init() {
	cmd.Register(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, ui.ErrorLine(err.Error()))
		}
		os.Exit(1)
	}
}
