package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/routing"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <question>",
	Short: "Show how a question would be routed",
	Long: `Classify a question without executing it. Useful for debugging why a
question lands on a particular retrieval strategy.

Examples:
  nexus classify "Which tables contain PII?"
  nexus classify "Show me tables with more than 100k rows"`,
	Args: cobra.ExactArgs(1),
	// Classification is pure, no catalog connection needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	question := args[0]

	intent := routing.NewClassifier().Classify(question)
	fmt.Printf("Intent: %s\n", intent)

	if intent == models.IntentMetadataFilter {
		if threshold, ok := routing.ParseRowThreshold(question); ok {
			fmt.Printf("Row filter: %s %d\n", threshold.Op, threshold.Value)
		}
	}

	if verbose {
		features := routing.ExtractFeatures(question)
		fmt.Println("\nFeatures:")
		for _, name := range sortedKeys(features) {
			fmt.Printf("  %-28s %.3f\n", name, features[name])
		}
	}

	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
