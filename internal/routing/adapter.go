package routing

import (
	"sort"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

const (
	// DefaultHighConfidence is the probability above which a single route
	// is executed instead of fusing the top two.
	DefaultHighConfidence = 0.80

	// mergeDepth is how many results per route contribute to rank fusion.
	mergeDepth = 5
)

// DefaultRouteWeights is the static fallback used when no trained
// classifier is available. Routing then degrades to rule-based selection
// with these fusion weights.
func DefaultRouteWeights() map[models.Intent]float64 {
	return map[models.Intent]float64{
		models.IntentSemanticDiscovery:     0.40,
		models.IntentMetadataFilter:        0.25,
		models.IntentDuplicateDetection:    0.20,
		models.IntentRelationshipTraversal: 0.15,
	}
}

// RouteClassifier is a trained route model consumed as a black box: it maps
// a feature vector to a probability distribution over routes.
type RouteClassifier interface {
	PredictRoutes(features map[string]float64) (map[models.Intent]float64, error)
}

// ConfidenceAdapter converts classifier probabilities into an execution
// plan: one confident route, or the top two fused by weight.
type ConfidenceAdapter struct {
	HighConfidence float64
}

// NewConfidenceAdapter returns an adapter with the default 0.80 threshold.
func NewConfidenceAdapter() *ConfidenceAdapter {
	return &ConfidenceAdapter{HighConfidence: DefaultHighConfidence}
}

// Decide builds an execution plan from a route probability distribution.
// A nil or empty distribution falls back to DefaultRouteWeights rather
// than failing; the caller still gets an executable plan.
func (a *ConfidenceAdapter) Decide(probabilities map[models.Intent]float64) models.ExecutionPlan {
	if len(probabilities) == 0 {
		probabilities = DefaultRouteWeights()
	}

	ranked := rankRoutes(probabilities)
	if ranked[0].prob > a.HighConfidence {
		return models.ExecutionPlan{
			Mode:    models.ModeSingle,
			Routes:  []models.Intent{ranked[0].route},
			Weights: map[models.Intent]float64{ranked[0].route: ranked[0].prob},
		}
	}

	top := ranked
	if len(top) > 2 {
		top = top[:2]
	}
	routes := make([]models.Intent, len(top))
	weights := make(map[models.Intent]float64, len(top))
	for i, r := range top {
		routes[i] = r.route
		weights[r.route] = r.prob
	}
	return models.ExecutionPlan{Mode: models.ModeMulti, Routes: routes, Weights: weights}
}

type routeProb struct {
	route models.Intent
	prob  float64
}

func rankRoutes(probabilities map[models.Intent]float64) []routeProb {
	ranked := make([]routeProb, 0, len(probabilities))
	for route, prob := range probabilities {
		ranked = append(ranked, routeProb{route, prob})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].prob != ranked[j].prob {
			return ranked[i].prob > ranked[j].prob
		}
		return ranked[i].route < ranked[j].route
	})
	return ranked
}

// Merge fuses per-route rankings into one list using linear rank decay:
// an entity at 1-indexed rank r in route k contributes (6-r)/5 * weight(k),
// zero below rank 5. Contributions sum per entity; the result is sorted by
// fused score descending with entity id as the tie-break.
func (a *ConfidenceAdapter) Merge(
	routeResults map[models.Intent][]models.RankedResult,
	weights map[models.Intent]float64,
) []models.RankedResult {
	fused := make(map[string]*models.RankedResult)

	for route, results := range routeResults {
		weight := weights[route]
		limit := len(results)
		if limit > mergeDepth {
			limit = mergeDepth
		}
		for i := 0; i < limit; i++ {
			r := results[i]
			if r.EntityID == "" {
				continue
			}
			rankScore := float64(mergeDepth+1-(i+1)) / float64(mergeDepth)
			contribution := rankScore * weight

			entry, ok := fused[r.EntityID]
			if !ok {
				entry = &models.RankedResult{
					EntityID:  r.EntityID,
					RowCount:  r.RowCount,
					Neighbors: r.Neighbors,
					Reasoning: "rank fusion",
				}
				fused[r.EntityID] = entry
			}
			entry.FinalScore += contribution
		}
	}

	merged := make([]models.RankedResult, 0, len(fused))
	for _, entry := range fused {
		merged = append(merged, *entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].FinalScore != merged[j].FinalScore {
			return merged[i].FinalScore > merged[j].FinalScore
		}
		return merged[i].EntityID < merged[j].EntityID
	})
	return merged
}
