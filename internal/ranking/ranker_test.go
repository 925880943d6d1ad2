package ranking

import (
	"math"
	"testing"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"default", DefaultWeights(), false},
		{"balanced", Weights{Semantic: 0.6, Structural: 0.4}, false},
		{"sum below one", Weights{Semantic: 0.5, Structural: 0.4}, true},
		{"sum above one", Weights{Semantic: 0.8, Structural: 0.3}, true},
		{"negative", Weights{Semantic: 1.2, Structural: -0.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRankerRejectsInvalidWeights(t *testing.T) {
	if _, err := NewRanker(Weights{Semantic: 0.9, Structural: 0.9}, 6); err == nil {
		t.Error("expected error for weights not summing to 1")
	}
}

func TestRankScores(t *testing.T) {
	ranker, err := NewRanker(DefaultWeights(), DefaultMaxCentrality)
	if err != nil {
		t.Fatalf("NewRanker failed: %v", err)
	}

	results := ranker.Rank([]models.Candidate{
		{EntityID: "snowflake:CUSTOMERS", SemanticScore: 0.9, Centrality: 6, RowCount: 1000},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	// Centrality at the max saturates the structural score
	if math.Abs(r.StructuralScore-1.0) > 1e-9 {
		t.Errorf("structural score = %f, want 1.0", r.StructuralScore)
	}
	// 0.8*0.9 + 0.2*1.0
	if math.Abs(r.FinalScore-0.92) > 1e-9 {
		t.Errorf("final score = %f, want 0.92", r.FinalScore)
	}
	if r.Reasoning == "" {
		t.Error("result should carry reasoning")
	}
}

func TestStructuralScoreDampening(t *testing.T) {
	ranker, err := NewRanker(DefaultWeights(), 6)
	if err != nil {
		t.Fatalf("NewRanker failed: %v", err)
	}

	tests := []struct {
		centrality int
		want       float64
	}{
		{0, 0},
		{-1, 0},
		{1, math.Log(2) / math.Log(7)},
		{3, math.Log(4) / math.Log(7)},
		{6, 1.0},
		// Above the expected max the score clamps rather than exceeding 1
		{20, 1.0},
	}
	for _, tt := range tests {
		got := ranker.structuralScore(tt.centrality)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("structuralScore(%d) = %f, want %f", tt.centrality, got, tt.want)
		}
	}
}

// Log dampening: doubling centrality must not double the score.
func TestStructuralScoreSublinear(t *testing.T) {
	ranker, _ := NewRanker(DefaultWeights(), 6)

	s2 := ranker.structuralScore(2)
	s4 := ranker.structuralScore(4)
	if s4 >= 2*s2 {
		t.Errorf("structural score should be sublinear: s(2)=%f s(4)=%f", s2, s4)
	}
}

func TestRankOrdering(t *testing.T) {
	ranker, err := NewRanker(DefaultWeights(), DefaultMaxCentrality)
	if err != nil {
		t.Fatalf("NewRanker failed: %v", err)
	}

	results := ranker.Rank([]models.Candidate{
		{EntityID: "c", SemanticScore: 0.5, Centrality: 0, RowCount: 10},
		{EntityID: "a", SemanticScore: 0.9, Centrality: 0, RowCount: 10},
		// Same final score as "c", more rows: ranks above it
		{EntityID: "b", SemanticScore: 0.5, Centrality: 0, RowCount: 500},
		// Same final score and rows as "c": entity id breaks the tie
		{EntityID: "d", SemanticScore: 0.5, Centrality: 0, RowCount: 10},
	})

	wantOrder := []string{"a", "b", "c", "d"}
	for i, want := range wantOrder {
		if results[i].EntityID != want {
			t.Errorf("position %d = %s, want %s", i, results[i].EntityID, want)
		}
	}
}

// Out-of-range semantic scores are clamped before weighting.
func TestRankClampsSemantic(t *testing.T) {
	ranker, _ := NewRanker(DefaultWeights(), DefaultMaxCentrality)

	results := ranker.Rank([]models.Candidate{
		{EntityID: "over", SemanticScore: 1.7},
		{EntityID: "under", SemanticScore: -0.3},
	})
	for _, r := range results {
		if r.FinalScore < 0 || r.FinalScore > 1 {
			t.Errorf("%s final score %f outside [0,1]", r.EntityID, r.FinalScore)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	ranker, _ := NewRanker(DefaultWeights(), DefaultMaxCentrality)
	if results := ranker.Rank(nil); len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}
