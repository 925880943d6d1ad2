package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/llm"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

var (
	duplicatesConfidence string
	duplicatesLimit      int
	duplicatesExplain    bool
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List persisted duplicate findings",
	Long: `List duplicate-table findings from previous detection sweeps, best
score first.

Examples:
  nexus duplicates
  nexus duplicates --confidence high
  nexus duplicates -n 50
  nexus duplicates --confidence high --explain`,
	RunE: runDuplicates,
}

func init() {
	duplicatesCmd.Flags().StringVar(&duplicatesConfidence, "confidence", "", "filter by tier (high, medium, low)")
	duplicatesCmd.Flags().IntVarP(&duplicatesLimit, "limit", "n", 20, "max findings")
	duplicatesCmd.Flags().BoolVar(&duplicatesExplain, "explain", false, "explain each finding with the LLM")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var confidence *models.Confidence
	switch duplicatesConfidence {
	case "":
	case "high", "medium", "low":
		c := models.Confidence(duplicatesConfidence)
		confidence = &c
	default:
		return fmt.Errorf("unknown confidence %q (want high, medium, or low)", duplicatesConfidence)
	}

	edges, err := dbClient.QueryListDuplicates(ctx, confidence, duplicatesLimit)
	if err != nil {
		return fmt.Errorf("list duplicates: %w", err)
	}

	if len(edges) == 0 {
		fmt.Println("No duplicate findings. Run 'nexus detect --persist' first.")
		return nil
	}

	var mdl *llm.Model
	if duplicatesExplain {
		mdl, err = getModel()
		if err != nil {
			return err
		}
	}

	for i, e := range edges {
		fmt.Printf("%2d. %s:%s ⇄ %s:%s  %.3f %s\n",
			i+1, e.SourcePlatform, e.SourceTable, e.TargetPlatform, e.TargetTable,
			e.TotalScore, confidenceLabel(e.Confidence))
		if verbose {
			fmt.Printf("    semantic %.2f · schema %.2f · statistical %.2f · relationship %.2f  (run %s)\n",
				e.SemanticScore, e.SchemaScore, e.StatisticalScore, e.RelationshipScore, e.RunID)
		}
		if mdl != nil {
			explanation, err := mdl.ExplainSimilarity(ctx, edgeScore(e))
			if err != nil {
				return fmt.Errorf("explain %s: %w", e.SourceTable, err)
			}
			fmt.Printf("    %s\n", explanation)
		}
	}

	return nil
}

// edgeScore rebuilds a similarity score from a persisted edge. Column
// matches are not stored on the edge projection and stay empty.
func edgeScore(e db.SimilarityEdge) models.SimilarityScore {
	return models.SimilarityScore{
		SourceTable:       e.SourceTable,
		TargetTable:       e.TargetTable,
		SourcePlatform:    e.SourcePlatform,
		TargetPlatform:    e.TargetPlatform,
		SemanticScore:     e.SemanticScore,
		SchemaScore:       e.SchemaScore,
		StatisticalScore:  e.StatisticalScore,
		RelationshipScore: e.RelationshipScore,
		TotalScore:        e.TotalScore,
		Confidence:        e.Confidence,
	}
}
