package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/codesellers/backend/internal/region"
)

var inspectShowRows bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Load a sales file and report diagnostics",
	Long: `Loads a semicolon-delimited sales file and reports how many rows were
accepted, why the others were skipped, how many subdivision codes were
inferred and how the records spread over the regions.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectShowRows, "rows", false, "list every skipped row")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, corpus, err := loadStore(args[0])
	if err != nil {
		return err
	}

	stats := corpus.Stats()
	if jsonOut {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Source: %s\n", stats.Source)
	cmd.Printf("Version: %s\n", stats.Version)
	cmd.Printf("Loaded: %d\n", stats.Loaded)
	cmd.Printf("Skipped: %d\n", stats.Skipped)

	reasons := make([]string, 0, len(stats.SkippedByReason))
	for reason := range stats.SkippedByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		cmd.Printf("  %s: %d\n", reason, stats.SkippedByReason[reason])
	}

	cmd.Printf("Subdivision fallbacks: %d\n", stats.SubdivisionFallbacks)
	cmd.Println("Per region:")
	for _, tag := range region.Tags() {
		cmd.Printf("  %s: %d\n", tag, stats.PerRegion[tag])
	}

	if inspectShowRows && len(corpus.Skipped) > 0 {
		cmd.Println("Skipped rows:")
		for _, f := range corpus.Skipped {
			cmd.Printf("  row %d: %s (%s)\n", f.Row, f.Reason, f.Detail)
		}
	}

	return nil
}
