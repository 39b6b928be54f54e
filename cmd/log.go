package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by OS user name")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Shows the audit log",
	Long: `Displays the audit log written when audit-log-path is set in the config.

Entries record who ran which operation on which files. Values are never
logged.

Examples:
  envstore log                              # Full log
  envstore log -n 10 --reverse              # Last 10, most recent first
  envstore log --operation encrypt,decrypt  # Filter by operation
  envstore log --since 2024-01-01 --json    # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")
	s, cleanup := startSpinner("Loading audit log...")
	defer cleanup()

	project, err := loadProject()
	if err != nil {
		return fail(s, err)
	}

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Project:    project,
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		return fail(s, err)
	}

	Logger.Debugf("Parsed %d entries from %s", result.Total, result.Path)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))
	cleanup()

	out := cmd.OutOrStdout()
	if logJSON {
		return outputLogJSON(out, result.Entries)
	}

	if len(result.Entries) == 0 {
		if result.Total == 0 {
			fmt.Fprintln(out, "No audit log entries found.")
		} else {
			fmt.Fprintln(out, "No audit log entries found matching the filters.")
		}
		return nil
	}

	if logOneline {
		for _, e := range result.Entries {
			fmt.Fprintf(out, "%s %s %s %s\n", e.ID[:min(8, len(e.ID))], e.User, e.Operation, workflows.FormatDetails(e))
		}
		return nil
	}

	for _, e := range result.Entries {
		fmt.Fprintf(out, "%-19s  %-12s  %-8s  %s\n", workflows.FormatDateTime(e.Timestamp), e.User, e.Operation, workflows.FormatDetails(e))
	}
	return nil
}

func outputLogJSON(w io.Writer, entries []audit.Entry) error {
	if entries == nil {
		entries = []audit.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
