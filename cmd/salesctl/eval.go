package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesellers/backend/internal/evaluation"
)

var evalK int

var evalCmd = &cobra.Command{
	Use:   "eval [file] [dataset.json]",
	Short: "Evaluate ranking quality against labelled questions",
	Args:  cobra.ExactArgs(2),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().IntVarP(&evalK, "top-k", "k", 10, "number of records ranked per question")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	_, corpus, err := loadStore(args[0])
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read evaluation dataset: %w", err)
	}

	evaluator := evaluation.NewEvaluator(newRanker())
	ds, err := evaluator.LoadDatasetFromJSON(string(raw))
	if err != nil {
		return err
	}

	report, err := evaluator.RunDatasetEvaluation(corpus.Records, ds, evalK)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd, report)
	}
	cmd.Print(evaluator.GenerateReport(report))
	return nil
}
