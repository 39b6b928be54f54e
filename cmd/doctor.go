package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	doctorKeys       keyFlags
	doctorJSONOutput bool
)

func init() {
	doctorKeys.register(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Runs health checks on the env store setup",
	Long: `Runs a series of read-only health checks and reports issues.

The doctor command checks:
  - Config file presence and algorithm
  - Where the encryption key comes from
  - Key file permissions
  - Gitignore entries for the key file and plaintext env files
  - Whether the store decrypts and carries an algorithm tag

Exits non-zero when any check fails with an error. Warnings do not change
the exit code.

Use --json for machine-readable output.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")
	s, cleanup := startSpinner("Running health checks...")
	defer cleanup()

	project, err := loadProject()
	if err != nil {
		return fail(s, err)
	}

	result, err := workflows.Doctor(context.Background(), workflows.DoctorOptions{
		Project: project,
		Keys:    doctorKeys.options(),
	})
	if err != nil {
		return fail(s, err)
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status, check.Message)
	}

	cleanup()
	out := cmd.OutOrStdout()
	if doctorJSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResults(out, result)
	}

	if result.Summary.Errors > 0 {
		return &reportedError{err: fmt.Errorf("%d health %s failed", result.Summary.Errors, utils.Plural(result.Summary.Errors, "check"))}
	}
	return nil
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(w io.Writer, result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var line string
		switch check.Status {
		case workflows.CheckPass:
			line = ui.SuccessLine(check.Message)
		case workflows.CheckWarning:
			line = ui.WarningLine(check.Message)
		default:
			line = ui.ErrorLine(check.Message)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Fprintf(w, ", %s", ui.Warning.Sprintf("%d warning(s)", result.Summary.Warnings))
	}
	if result.Summary.Errors > 0 {
		fmt.Fprintf(w, ", %s", ui.Error.Sprintf("%d error(s)", result.Summary.Errors))
	}
	fmt.Fprintln(w)

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(w, "  %s %s\n", ui.Info.Sprint("→"), suggestion)
		}
	}
}
