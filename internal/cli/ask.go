package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

var (
	askLimit      int
	askSynthesize bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the catalog",
	Long: `Ask a question about the registered catalog metadata.

The question is routed to the retrieval strategy it calls for: semantic
discovery, metadata filters, lineage, relationships, duplicates, or
sensitivity. Pass --synthesize to get an LLM-written answer over the
retrieved tables.

Examples:
  nexus ask "Which tables contain customer emails?"
  nexus ask "Show me tables with more than 100k rows"
  nexus ask "What does CLIENT_DATA derive from?"
  nexus ask "Are there duplicate tables across Snowflake and Databricks?" --synthesize`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", service.DefaultResultLimit, "max results")
	askCmd.Flags().BoolVar(&askSynthesize, "synthesize", false, "synthesize an answer with the LLM")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := getQueryService(askSynthesize)
	if err != nil {
		return err
	}

	answer, err := svc.Ask(ctx, args[0], service.AskOptions{
		Limit:      askLimit,
		Synthesize: askSynthesize,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Printf("Route: %s", answer.Route.Route)
	if answer.Plan.Mode == models.ModeMulti {
		fmt.Printf(" (fused: %v)", answer.Plan.Routes)
	}
	fmt.Println()
	if answer.Threshold != nil {
		fmt.Printf("Row filter: %s %d\n", answer.Threshold.Op, answer.Threshold.Value)
	}
	fmt.Println()

	if len(answer.Results) == 0 {
		fmt.Println("No matching tables found.")
		return nil
	}

	for i, r := range answer.Results {
		fmt.Printf("%2d. %s", i+1, r.EntityID)
		if r.FinalScore > 0 {
			fmt.Printf("  (score %.3f)", r.FinalScore)
		}
		fmt.Println()
		if verbose && r.Reasoning != "" {
			fmt.Printf("    %s\n", r.Reasoning)
		}
		if verbose && len(r.Neighbors) > 0 {
			fmt.Printf("    neighbors: %v\n", r.Neighbors)
		}
	}

	if answer.Summary != "" {
		fmt.Printf("\n%s\n", answer.Summary)
	}

	return nil
}
