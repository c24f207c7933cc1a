package main

import (
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file] [region]",
	Short: "Aggregate the sales of one region",
	Args:  cobra.ExactArgs(2),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	store, _, err := loadStore(args[0])
	if err != nil {
		return err
	}

	rs, err := newEngine(store).RegionSummary(args[1])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd, rs.Summary)
	}

	s := rs.Summary
	cmd.Printf("Region: %s\n", rs.Region)
	cmd.Printf("Records: %d\n", len(rs.Records))
	cmd.Printf("Total value: %.2f\n", s.TotalValue)
	cmd.Printf("Total quantity: %d\n", s.TotalQuantity)
	cmd.Printf("Mean value: %.2f\n", s.MeanValue)
	cmd.Printf("Distinct customers: %d\n", s.DistinctCustomers)
	cmd.Printf("Total profit: %.2f\n", s.TotalProfit)
	cmd.Printf("Profit margin: %.2f%%\n", s.ProfitMargin)
	cmd.Printf("Inventory level: %d\n", s.InventoryLevel)
	cmd.Printf("Low stock products: %d\n", s.LowStockProducts)
	return nil
}
