// Package ranking fuses semantic and structural relevance signals into a
// single ranked list for retrieval queries.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// DefaultMaxCentrality is the expected maximum entity degree used to
// normalize the log-dampened structural score.
const DefaultMaxCentrality = 6

// weightTolerance absorbs float error when validating that weights sum to 1.
const weightTolerance = 1e-9

// Weights is a semantic/structural weight profile. The two weights must
// sum to 1.
type Weights struct {
	Semantic   float64 `yaml:"semantic"`
	Structural float64 `yaml:"structural"`
}

// DefaultWeights favors the semantic signal heavily: experiments showed a
// low structural weight keeps high-degree hub tables from dominating every
// query. 0.6/0.4 and 0.7/0.3 are alternate profiles, not universal truth.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.8, Structural: 0.2}
}

// Validate reports an error unless the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Structural < 0 {
		return fmt.Errorf("ranking weights must be non-negative: %+v", w)
	}
	if math.Abs(w.Semantic+w.Structural-1) > weightTolerance {
		return fmt.Errorf("ranking weights must sum to 1, got %g", w.Semantic+w.Structural)
	}
	return nil
}

// Ranker combines per-candidate semantic scores with graph centrality.
type Ranker struct {
	weights       Weights
	maxCentrality int
}

// NewRanker creates a ranker; invalid weights are rejected so a
// misconfigured profile fails at startup rather than skewing every query.
func NewRanker(weights Weights, maxCentrality int) (*Ranker, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if maxCentrality <= 0 {
		maxCentrality = DefaultMaxCentrality
	}
	return &Ranker{weights: weights, maxCentrality: maxCentrality}, nil
}

// Rank scores every candidate and returns them ordered by final score
// descending. Ties break on higher row count, then lexical entity id, so
// rankings are reproducible regardless of search-result order.
func (r *Ranker) Rank(candidates []models.Candidate) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		structural := r.structuralScore(c.Centrality)
		semantic := models.ClampUnit(c.SemanticScore)
		final := r.weights.Semantic*semantic + r.weights.Structural*structural

		results = append(results, models.RankedResult{
			EntityID:        c.EntityID,
			Platform:        c.Platform,
			SemanticScore:   semantic,
			StructuralScore: structural,
			FinalScore:      final,
			Centrality:      c.Centrality,
			RowCount:        c.RowCount,
			Neighbors:       c.Neighbors,
			Reasoning: fmt.Sprintf("hybrid: semantic (%.3f) + centrality (%.3f)",
				semantic, structural),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		if results[i].RowCount != results[j].RowCount {
			return results[i].RowCount > results[j].RowCount
		}
		return results[i].EntityID < results[j].EntityID
	})
	return results
}

// structuralScore log-dampens centrality so hub tables with many edges do
// not rank first regardless of semantic relevance.
func (r *Ranker) structuralScore(centrality int) float64 {
	if centrality <= 0 {
		return 0
	}
	score := math.Log(float64(centrality)+1) / math.Log(float64(r.maxCentrality)+1)
	return models.ClampUnit(score)
}
