package main

import (
	"github.com/spf13/cobra"

	"github.com/codesellers/backend/internal/query"
)

var (
	rankK       int
	rankContext bool
)

var rankCmd = &cobra.Command{
	Use:   "rank [file] [query]",
	Short: "Rank records by relevance to a query",
	Long: `Ranks every record of the file by TF-IDF cosine similarity to the query
and prints the top k. With --context the assembled context block that would
be handed to the answering model is printed as well.`,
	Args: cobra.ExactArgs(2),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&rankK, "top-k", "k", 10, "number of records to return")
	rankCmd.Flags().BoolVar(&rankContext, "context", false, "print the assembled context block")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	store, _, err := loadStore(args[0])
	if err != nil {
		return err
	}

	rk, err := newEngine(store).Rank(args[1], rankK)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd, rk)
	}

	if len(rk.Results) == 0 {
		cmd.Println("No records loaded.")
		return nil
	}
	if rk.Fallback {
		cmd.Println("Similarity model unavailable, records listed in sequence order.")
	}

	for i, r := range rk.Results {
		cmd.Printf("  [%d] #%d %s | %s | %s (%.4f)\n",
			i+1, r.Record.SeqID, r.Record.Region, r.Record.Customer, r.Record.Product, r.Score)
	}

	if rankContext {
		cmd.Println()
		cmd.Println(query.AssembleContext(rk.Results, args[1]))
	}

	return nil
}
