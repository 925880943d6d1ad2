package routing

import (
	"math"
	"testing"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

func TestDecideSingleRoute(t *testing.T) {
	a := NewConfidenceAdapter()

	plan := a.Decide(map[models.Intent]float64{
		models.IntentSemanticDiscovery:  0.85,
		models.IntentMetadataFilter:     0.10,
		models.IntentDuplicateDetection: 0.05,
	})

	if plan.Mode != models.ModeSingle {
		t.Fatalf("expected single mode, got %s", plan.Mode)
	}
	if len(plan.Routes) != 1 || plan.Routes[0] != models.IntentSemanticDiscovery {
		t.Errorf("expected [semantic_discovery], got %v", plan.Routes)
	}
	if plan.Weights[models.IntentSemanticDiscovery] != 0.85 {
		t.Errorf("expected weight 0.85, got %f", plan.Weights[models.IntentSemanticDiscovery])
	}
}

func TestDecideMultiRoute(t *testing.T) {
	a := NewConfidenceAdapter()

	plan := a.Decide(map[models.Intent]float64{
		models.IntentSemanticDiscovery:  0.55,
		models.IntentMetadataFilter:     0.30,
		models.IntentDuplicateDetection: 0.15,
	})

	if plan.Mode != models.ModeMulti {
		t.Fatalf("expected multi mode, got %s", plan.Mode)
	}
	if len(plan.Routes) != 2 {
		t.Fatalf("expected top 2 routes, got %v", plan.Routes)
	}
	if plan.Routes[0] != models.IntentSemanticDiscovery || plan.Routes[1] != models.IntentMetadataFilter {
		t.Errorf("expected [semantic_discovery metadata_filter], got %v", plan.Routes)
	}
	if _, ok := plan.Weights[models.IntentDuplicateDetection]; ok {
		t.Error("third route should not carry a weight")
	}
}

// A probability exactly at the threshold is not confident enough.
func TestDecideThresholdBoundary(t *testing.T) {
	a := NewConfidenceAdapter()

	plan := a.Decide(map[models.Intent]float64{
		models.IntentSemanticDiscovery: 0.80,
		models.IntentMetadataFilter:    0.20,
	})
	if plan.Mode != models.ModeMulti {
		t.Errorf("0.80 should not exceed the 0.80 threshold, got mode %s", plan.Mode)
	}

	plan = a.Decide(map[models.Intent]float64{
		models.IntentSemanticDiscovery: 0.81,
		models.IntentMetadataFilter:    0.19,
	})
	if plan.Mode != models.ModeSingle {
		t.Errorf("0.81 should exceed the threshold, got mode %s", plan.Mode)
	}
}

// No classifier output still yields an executable plan.
func TestDecideFallback(t *testing.T) {
	a := NewConfidenceAdapter()

	for _, probs := range []map[models.Intent]float64{nil, {}} {
		plan := a.Decide(probs)
		if plan.Mode != models.ModeMulti {
			t.Errorf("fallback should be multi mode, got %s", plan.Mode)
		}
		if len(plan.Routes) != 2 {
			t.Fatalf("fallback should fuse top 2 default routes, got %v", plan.Routes)
		}
		if plan.Routes[0] != models.IntentSemanticDiscovery {
			t.Errorf("highest default weight is semantic_discovery, got %s", plan.Routes[0])
		}
		if plan.Routes[1] != models.IntentMetadataFilter {
			t.Errorf("second default weight is metadata_filter, got %s", plan.Routes[1])
		}
	}
}

// Equal probabilities tie-break on route name so plans are reproducible.
func TestDecideTieBreak(t *testing.T) {
	a := NewConfidenceAdapter()

	plan := a.Decide(map[models.Intent]float64{
		models.IntentSemanticDiscovery: 0.5,
		models.IntentMetadataFilter:    0.5,
	})
	if plan.Routes[0] != models.IntentMetadataFilter {
		t.Errorf("tie should break to metadata_filter (lexically first), got %s", plan.Routes[0])
	}
}

func TestMerge(t *testing.T) {
	a := NewConfidenceAdapter()

	routeResults := map[models.Intent][]models.RankedResult{
		models.IntentSemanticDiscovery: {
			{EntityID: "snowflake:CUSTOMERS"},
			{EntityID: "snowflake:ORDERS"},
		},
		models.IntentMetadataFilter: {
			{EntityID: "snowflake:CUSTOMERS"},
			{EntityID: "snowflake:PAYMENTS"},
		},
	}
	weights := map[models.Intent]float64{
		models.IntentSemanticDiscovery: 0.6,
		models.IntentMetadataFilter:    0.4,
	}

	merged := a.Merge(routeResults, weights)
	if len(merged) != 3 {
		t.Fatalf("expected 3 fused entities, got %d", len(merged))
	}

	// Rank 1 in both routes: 1.0*0.6 + 1.0*0.4 = 1.0
	if merged[0].EntityID != "snowflake:CUSTOMERS" {
		t.Errorf("expected CUSTOMERS first, got %s", merged[0].EntityID)
	}
	if math.Abs(merged[0].FinalScore-1.0) > 1e-9 {
		t.Errorf("expected fused score 1.0, got %f", merged[0].FinalScore)
	}

	// Rank 2 in one route: 0.8 * weight
	scores := map[string]float64{}
	for _, r := range merged {
		scores[r.EntityID] = r.FinalScore
	}
	if math.Abs(scores["snowflake:ORDERS"]-0.8*0.6) > 1e-9 {
		t.Errorf("expected ORDERS score 0.48, got %f", scores["snowflake:ORDERS"])
	}
	if math.Abs(scores["snowflake:PAYMENTS"]-0.8*0.4) > 1e-9 {
		t.Errorf("expected PAYMENTS score 0.32, got %f", scores["snowflake:PAYMENTS"])
	}
}

// Results below rank 5 contribute nothing.
func TestMergeDepthLimit(t *testing.T) {
	a := NewConfidenceAdapter()

	results := make([]models.RankedResult, 7)
	for i := range results {
		results[i] = models.RankedResult{EntityID: string(rune('a' + i))}
	}

	merged := a.Merge(
		map[models.Intent][]models.RankedResult{models.IntentSemanticDiscovery: results},
		map[models.Intent]float64{models.IntentSemanticDiscovery: 1.0},
	)

	if len(merged) != 5 {
		t.Fatalf("expected 5 contributing results, got %d", len(merged))
	}
	// Rank 5 contributes (6-5)/5 = 0.2
	last := merged[len(merged)-1]
	if math.Abs(last.FinalScore-0.2) > 1e-9 {
		t.Errorf("expected rank-5 score 0.2, got %f", last.FinalScore)
	}
}

func TestMergeTieBreak(t *testing.T) {
	a := NewConfidenceAdapter()

	merged := a.Merge(
		map[models.Intent][]models.RankedResult{
			models.IntentSemanticDiscovery: {{EntityID: "b"}},
			models.IntentMetadataFilter:    {{EntityID: "a"}},
		},
		map[models.Intent]float64{
			models.IntentSemanticDiscovery: 0.5,
			models.IntentMetadataFilter:    0.5,
		},
	)
	if len(merged) != 2 {
		t.Fatalf("expected 2 results, got %d", len(merged))
	}
	if merged[0].EntityID != "a" || merged[1].EntityID != "b" {
		t.Errorf("equal scores should order by entity id, got [%s %s]", merged[0].EntityID, merged[1].EntityID)
	}
}
