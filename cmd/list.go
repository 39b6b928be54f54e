package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/envstore/internal/dotenv"
	"github.com/PolarWolf314/envstore/internal/ui"
	"github.com/PolarWolf314/envstore/internal/utils"
	"github.com/PolarWolf314/envstore/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	listKeys       keyFlags
	listPatterns   []string
	listAlgorithm  string
	listShowValues bool
)

func init() {
	listKeys.register(listCmd)
	listCmd.Flags().StringSliceVarP(&listPatterns, "file", "f", nil, "store files or globs, ** supported (default from config)")
	listCmd.Flags().StringVarP(&listAlgorithm, "algorithm", "a", "", "cipher for stores without an algorithm tag")
	listCmd.Flags().BoolVar(&listShowValues, "show-values", false, "print values instead of masking them")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the variables in one or more store files",
	Long: `Decrypts store files and lists their variable names with masked values.

Examples:
  envstore list                          # The configured store
  envstore list -f '**/*.store'          # Every store in the tree
  envstore list --show-values            # Unmasked`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting list command")
	s, cleanup := startSpinner("Reading stores...")
	defer cleanup()

	project, err := loadProject()
	if err != nil {
		return fail(s, err)
	}

	result, err := workflows.List(context.Background(), workflows.ListOptions{
		Project:   project,
		Keys:      listKeys.options(),
		Patterns:  listPatterns,
		Algorithm: listAlgorithm,
	})
	if err != nil {
		return fail(s, err)
	}
	Logger.Debugf("Opened %d stores, %d failed", len(result.Stores), result.Failed())

	cleanup()
	warnDefaultKey(result.Key)

	out := cmd.OutOrStdout()
	for i, store := range result.Stores {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, formatStoreListing(project, store))
	}

	if failed := result.Failed(); failed > 0 {
		err := fmt.Errorf("%d of %d %s could not be decrypted", failed, len(result.Stores), utils.Plural(len(result.Stores), "store"))
		fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorLine(err.Error()))
		return &reportedError{err: err}
	}
	return nil
}

func formatStoreListing(project *workflows.Project, store workflows.StoreListing) string {
	path := store.Path
	if rel, err := filepath.Rel(project.Dir, path); err == nil {
		path = rel
	}

	var b strings.Builder
	if store.Err != nil {
		b.WriteString(ui.ErrorLine(ui.Path.Sprint(path)))
		b.WriteString("\n    " + ui.Muted.Sprint(store.Err.Error()))
		return b.String()
	}

	tag := ""
	if !store.Tagged {
		tag = ", untagged"
	}
	b.WriteString(ui.Path.Sprint(path) + " " + ui.Muted.Sprintf("%s%s, %d %s", store.Algorithm, tag, len(store.Vars), utils.Plural(len(store.Vars), "variable")))

	for _, name := range dotenv.Keys(store.Vars) {
		value := store.Vars[name]
		if !listShowValues {
			value = dotenv.Mask(value)
		}
		b.WriteString("\n    " + ui.Highlight.Sprint(name) + " = " + ui.Secret.Sprint(value))
	}
	return b.String()
}
