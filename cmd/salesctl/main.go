// Command salesctl inspects a sales file offline: load diagnostics, region
// summaries, ranked retrieval and ranking evaluation.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesellers/backend/internal/dataset"
	"github.com/codesellers/backend/internal/query"
	"github.com/codesellers/backend/internal/ranking"
	"github.com/codesellers/backend/pkg/logger"
)

var (
	latin1   bool
	stemming bool
	logLevel string
	jsonOut  bool
	maxNGram int
	maxTerms int
)

var rootCmd = &cobra.Command{
	Use:           "salesctl",
	Short:         "Inspect and query regional sales files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return logger.Init(logLevel, "console", "stderr")
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&latin1, "latin1", false, "decode the file as Latin-1 when it is not valid UTF-8")
	flags.BoolVar(&stemming, "stemming", false, "stem Portuguese words before ranking")
	flags.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	flags.BoolVar(&jsonOut, "json", false, "output as JSON")
	flags.IntVar(&maxNGram, "max-ngram", 2, "longest word n-gram in the ranking vocabulary")
	flags.IntVar(&maxTerms, "max-features", 1000, "ranking vocabulary size")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadStore reads path into a fresh store. Structural failures are returned;
// row-level failures are part of the loaded corpus.
func loadStore(path string) (*dataset.Store, *dataset.Corpus, error) {
	store := dataset.NewStore(dataset.Options{Latin1Fallback: latin1})
	corpus, err := store.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return store, corpus, nil
}

func newRanker() *ranking.Ranker {
	return ranking.NewRanker(ranking.Options{
		MaxFeatures: maxTerms,
		MaxNGram:    maxNGram,
		Stemming:    stemming,
	})
}

func newEngine(store *dataset.Store) *query.Engine {
	return query.NewEngine(store, newRanker(), nil, nil, nil, query.Options{})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
