package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// fakeEmbedder serves fixed per-column vectors; unknown names get an error
// so tests notice missing fixtures.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) EmbedColumn(_ context.Context, name string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[name]
	if !ok {
		return nil, errors.New("no fixture vector for " + name)
	}
	return v, nil
}

func mustScorer(t *testing.T, embedder ColumnEmbedder) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig(), embedder, nil)
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestScorerWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("default weights should validate: %v", err)
	}
	bad := Weights{Semantic: 0.5, Schema: 0.5, Statistical: 0.5, Relationship: 0.5}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for weights summing to 2")
	}
	negative := Weights{Semantic: 1.4, Schema: -0.4, Statistical: 0, Relationship: 0}
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestNewScorerRejectsInvalidWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Semantic: 1, Schema: 1, Statistical: 1, Relationship: 1}
	if _, err := NewScorer(cfg, nil, nil); err == nil {
		t.Error("expected error for invalid weights")
	}
}

func TestScoreIdenticalTables(t *testing.T) {
	scorer := mustScorer(t, nil)

	columns := []models.Column{
		{Name: "customer_id", Type: "NUMBER", Ordinal: 1},
		{Name: "email", Type: "TEXT", Ordinal: 2},
	}
	src := models.NewTableSignature("snowflake:CUSTOMERS", models.PlatformSnowflake, "PUBLIC", "CUSTOMERS", 1000, 0, columns)
	src.ColumnEmbedding = []float32{1, 0}
	tgt := models.NewTableSignature("databricks:customers", models.PlatformDatabricks, "main", "customers", 1000, 0, columns)
	tgt.ColumnEmbedding = []float32{1, 0}

	score := scorer.Score(context.Background(), src, tgt)

	if !almostEqual(score.TotalScore, 1.0) {
		t.Errorf("total score = %f, want 1.0", score.TotalScore)
	}
	if score.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want high", score.Confidence)
	}
	for name, got := range map[string]float64{
		"semantic":     score.SemanticScore,
		"schema":       score.SchemaScore,
		"statistical":  score.StatisticalScore,
		"relationship": score.RelationshipScore,
	} {
		if !almostEqual(got, 1.0) {
			t.Errorf("%s score = %f, want 1.0", name, got)
		}
	}
	if score.SourcePlatform != models.PlatformSnowflake || score.TargetPlatform != models.PlatformDatabricks {
		t.Errorf("platforms not carried: %s / %s", score.SourcePlatform, score.TargetPlatform)
	}
}

// Component-by-component check against hand-computed values.
func TestScoreComponents(t *testing.T) {
	scorer := mustScorer(t, nil)

	src := models.NewTableSignature("snowflake:CUSTOMERS", models.PlatformSnowflake, "PUBLIC", "CUSTOMERS", 1000, 0,
		[]models.Column{
			{Name: "customer_id", Type: "NUMBER"},
			{Name: "email", Type: "TEXT"},
			{Name: "created_at", Type: "TIMESTAMP"},
		})
	src.ColumnEmbedding = []float32{0, 1}

	tgt := models.NewTableSignature("databricks:clients", models.PlatformDatabricks, "main", "clients", 1000, 0,
		[]models.Column{
			{Name: "customer_id", Type: "BIGINT"},
			{Name: "email", Type: "STRING"},
			{Name: "region", Type: "VARCHAR"},
		})
	tgt.ColumnEmbedding = []float32{1, 0}

	score := scorer.Score(context.Background(), src, tgt)

	// Orthogonal table embeddings
	if !almostEqual(score.SemanticScore, 0) {
		t.Errorf("semantic = %f, want 0", score.SemanticScore)
	}
	// Type families {DATETIME,NUMERIC,STRING} vs {NUMERIC,STRING}: 2/3
	if !almostEqual(score.TypeOverlapScore, 2.0/3.0) {
		t.Errorf("type overlap = %f, want %f", score.TypeOverlapScore, 2.0/3.0)
	}
	// Normalized names share customerid and email: 2/4
	if !almostEqual(score.NameOverlapScore, 0.5) {
		t.Errorf("name overlap = %f, want 0.5", score.NameOverlapScore)
	}
	if !almostEqual(score.SchemaScore, (2.0/3.0+0.5)/2) {
		t.Errorf("schema = %f, want %f", score.SchemaScore, (2.0/3.0+0.5)/2)
	}
	// Equal row counts and equal column counts
	if !almostEqual(score.StatisticalScore, 1.0) {
		t.Errorf("statistical = %f, want 1.0", score.StatisticalScore)
	}
	// Both sides infer the customer FK entity
	if !almostEqual(score.RelationshipScore, 1.0) {
		t.Errorf("relationship = %f, want 1.0", score.RelationshipScore)
	}

	wantTotal := 0.25*(2.0/3.0+0.5)/2 + 0.20 + 0.15
	if !almostEqual(score.TotalScore, wantTotal) {
		t.Errorf("total = %f, want %f", score.TotalScore, wantTotal)
	}
	if score.Confidence != models.ConfidenceLow {
		t.Errorf("confidence = %s, want low", score.Confidence)
	}
}

func TestScoreSymmetry(t *testing.T) {
	scorer := mustScorer(t, nil)

	a := models.NewTableSignature("snowflake:ORDERS", models.PlatformSnowflake, "PUBLIC", "ORDERS", 5000, 0,
		[]models.Column{{Name: "order_id", Type: "NUMBER"}, {Name: "total", Type: "FLOAT"}})
	a.ColumnEmbedding = []float32{0.6, 0.8}
	b := models.NewTableSignature("databricks:orders", models.PlatformDatabricks, "main", "orders", 800, 0,
		[]models.Column{{Name: "order_id", Type: "LONG"}, {Name: "amount", Type: "DOUBLE"}, {Name: "status", Type: "STRING"}})
	b.ColumnEmbedding = []float32{0.8, 0.6}

	ab := scorer.Score(context.Background(), a, b)
	ba := scorer.Score(context.Background(), b, a)

	if !almostEqual(ab.TotalScore, ba.TotalScore) {
		t.Errorf("total score not symmetric: %f vs %f", ab.TotalScore, ba.TotalScore)
	}
	if ab.SourceTable != ba.TargetTable || ab.TargetTable != ba.SourceTable {
		t.Error("source/target not swapped on reversed comparison")
	}
}

func TestConfidenceBands(t *testing.T) {
	scorer := mustScorer(t, nil)

	tests := []struct {
		total float64
		want  models.Confidence
	}{
		{1.0, models.ConfidenceHigh},
		{0.75, models.ConfidenceHigh},
		{0.749999, models.ConfidenceMedium},
		{0.50, models.ConfidenceMedium},
		{0.499999, models.ConfidenceLow},
		{0.0, models.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := scorer.confidence(tt.total); got != tt.want {
			t.Errorf("confidence(%f) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestStatisticalScore(t *testing.T) {
	scorer := mustScorer(t, nil)

	sig := func(rows int64, cols int) models.TableSignature {
		return models.TableSignature{RowCount: rows, ColumnCount: cols}
	}

	tests := []struct {
		name     string
		src, tgt models.TableSignature
		want     float64
	}{
		{"equal rows and columns", sig(1000, 4), sig(1000, 4), 1.0},
		// Unknown row count scores a neutral 0.5, not 0
		{"unknown source rows", sig(0, 4), sig(1000, 4), (0.5 + 1.0) / 2},
		{"column ratio", sig(1000, 2), sig(1000, 8), (1.0 + 0.25) / 2},
		{"no columns at all", sig(1000, 0), sig(1000, 0), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.statisticalScore(tt.src, tt.tgt)
			if !almostEqual(got, tt.want) {
				t.Errorf("statisticalScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

// Row similarity decays with log distance and bottoms out at 0 once counts
// are LogDistanceDivisor orders of magnitude apart.
func TestStatisticalScoreRowDecay(t *testing.T) {
	scorer := mustScorer(t, nil)

	near := scorer.statisticalScore(
		models.TableSignature{RowCount: 1000, ColumnCount: 4},
		models.TableSignature{RowCount: 2000, ColumnCount: 4})
	far := scorer.statisticalScore(
		models.TableSignature{RowCount: 1000, ColumnCount: 4},
		models.TableSignature{RowCount: 100000, ColumnCount: 4})
	if near <= far {
		t.Errorf("closer row counts should score higher: near=%f far=%f", near, far)
	}

	// 10 vs 10M is far beyond 3 orders of magnitude: rowSim clamps to 0
	extremes := scorer.statisticalScore(
		models.TableSignature{RowCount: 10, ColumnCount: 4},
		models.TableSignature{RowCount: 10_000_000, ColumnCount: 4})
	if !almostEqual(extremes, 0.5) {
		t.Errorf("statisticalScore at extreme row distance = %f, want 0.5 (column term only)", extremes)
	}
}

func TestMatchColumns(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"customer_id": {1, 0, 0},
		"customerid":  {1, 0, 0},
		"email":       {0, 1, 0},
		"created_at":  {1, 1, 0},
		"region":      {0, 0, 1},
	}}
	scorer := mustScorer(t, embedder)

	src := models.TableSignature{
		TableID: "snowflake:CUSTOMERS",
		Columns: []models.Column{{Name: "customer_id"}, {Name: "email"}, {Name: "created_at"}},
	}
	tgt := models.TableSignature{
		TableID: "databricks:customers",
		Columns: []models.Column{{Name: "customerid"}, {Name: "email"}, {Name: "region"}},
	}

	matches := scorer.matchColumns(context.Background(), src, tgt)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(matches), matches)
	}

	bySource := make(map[string]models.ColumnMatch)
	for _, m := range matches {
		bySource[m.SourceColumn] = m
	}
	if m := bySource["customer_id"]; m.TargetColumn != "customerid" || m.Similarity != 1.0 {
		t.Errorf("customer_id match = %+v", m)
	}
	if m := bySource["email"]; m.TargetColumn != "email" || m.Similarity != 1.0 {
		t.Errorf("email match = %+v", m)
	}
	// cos({1,1,0},{1,0,0}) = 0.7071..., rounded to three decimals
	if m := bySource["created_at"]; m.TargetColumn != "customerid" || m.Similarity != 0.707 {
		t.Errorf("created_at match = %+v", m)
	}
}

// The assignment is greedy: two source columns may claim the same target.
func TestMatchColumnsGreedy(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"user_id":     {1, 0},
		"client_id":   {1, 0},
		"customer_id": {1, 0},
	}}
	scorer := mustScorer(t, embedder)

	src := models.TableSignature{
		Columns: []models.Column{{Name: "user_id"}, {Name: "client_id"}},
	}
	tgt := models.TableSignature{
		Columns: []models.Column{{Name: "customer_id"}},
	}

	matches := scorer.matchColumns(context.Background(), src, tgt)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.TargetColumn != "customer_id" {
			t.Errorf("match %s -> %s, want customer_id", m.SourceColumn, m.TargetColumn)
		}
	}
}

func TestMatchColumnsBelowThreshold(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"notes":  {0, 1},
		"amount": {1, 0},
	}}
	scorer := mustScorer(t, embedder)

	matches := scorer.matchColumns(context.Background(),
		models.TableSignature{Columns: []models.Column{{Name: "notes"}}},
		models.TableSignature{Columns: []models.Column{{Name: "amount"}}})
	if len(matches) != 0 {
		t.Errorf("expected no matches below threshold, got %+v", matches)
	}
}

// An embedding failure drops column matching but must not fail the score.
func TestScoreSurvivesEmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}
	scorer := mustScorer(t, embedder)

	columns := []models.Column{{Name: "order_id", Type: "NUMBER"}}
	src := models.NewTableSignature("snowflake:ORDERS", models.PlatformSnowflake, "PUBLIC", "ORDERS", 100, 0, columns)
	src.ColumnEmbedding = []float32{1, 0}
	tgt := models.NewTableSignature("databricks:orders", models.PlatformDatabricks, "main", "orders", 100, 0, columns)
	tgt.ColumnEmbedding = []float32{1, 0}

	score := scorer.Score(context.Background(), src, tgt)
	if score.MatchingColumns != nil {
		t.Errorf("expected no column matches, got %+v", score.MatchingColumns)
	}
	if !almostEqual(score.TotalScore, 1.0) {
		t.Errorf("total score = %f, want 1.0 despite embedder failure", score.TotalScore)
	}
}

func TestMatchColumnsNilEmbedder(t *testing.T) {
	scorer := mustScorer(t, nil)
	matches := scorer.matchColumns(context.Background(),
		models.TableSignature{Columns: []models.Column{{Name: "a"}}},
		models.TableSignature{Columns: []models.Column{{Name: "a"}}})
	if matches != nil {
		t.Errorf("nil embedder should yield no matches, got %+v", matches)
	}
}
