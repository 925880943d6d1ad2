package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	counts, err := dbClient.QueryCountByPlatform(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	total := 0
	fmt.Println("Catalog:")
	for _, c := range counts {
		fmt.Printf("  %-12s %d tables\n", c.Platform, c.Count)
		total += c.Count
	}
	fmt.Printf("  %-12s %d tables\n", "total", total)

	sensitive, err := dbClient.QuerySensitiveTables(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	fmt.Printf("  %-12s %d tables\n", "PII-flagged", len(sensitive))

	edges, err := dbClient.QueryListDuplicates(ctx, nil, 1000)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	fmt.Printf("  %-12s %d pairs\n", "duplicates", len(edges))

	if verbose {
		printOperationStats(collector.Snapshot())
	}

	return nil
}

// printOperationStats dumps the in-process timing metrics. Only interesting
// with --verbose after a command did real work in this process.
func printOperationStats(snap metrics.Snapshot) {
	fmt.Println("\nOperations (this process):")
	printOp := func(name string, op *metrics.OperationSnapshot) {
		if op == nil {
			return
		}
		fmt.Printf("  %-14s count=%d avg=%.1fms min=%dms max=%dms\n",
			name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
	printOp("embedding", snap.Embedding)
	printOp("llm_generate", snap.LLMGenerate)
	printOp("db_query", snap.DBQuery)
	printOp("db_search", snap.DBSearch)
	printOp("routing", snap.Routing)
	printOp("pair_scoring", snap.PairScoring)
}
