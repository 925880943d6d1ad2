package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// ColumnEmbedder produces an embedding for a single column name. The
// detector wraps implementations with a memoizing cache because the same
// column names recur across the cross product.
type ColumnEmbedder interface {
	EmbedColumn(ctx context.Context, name string) ([]float32, error)
}

// Weights is the component weighting of the table similarity score.
// The four weights must sum to 1.
type Weights struct {
	Semantic     float64 `yaml:"semantic"`
	Schema       float64 `yaml:"schema"`
	Statistical  float64 `yaml:"statistical"`
	Relationship float64 `yaml:"relationship"`
}

// DefaultWeights returns the tuned default profile:
// 40% column semantics, 25% schema overlap, 20% statistical fingerprint,
// 15% relationship context.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.40, Schema: 0.25, Statistical: 0.20, Relationship: 0.15}
}

const weightTolerance = 1e-9

// Validate reports an error unless the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Schema < 0 || w.Statistical < 0 || w.Relationship < 0 {
		return fmt.Errorf("similarity weights must be non-negative: %+v", w)
	}
	sum := w.Semantic + w.Schema + w.Statistical + w.Relationship
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("similarity weights must sum to 1, got %g", sum)
	}
	return nil
}

// Config holds the scorer's tunables. The log-distance divisor and the
// column match threshold were calibrated empirically; both are exposed for
// recalibration rather than fixed.
type Config struct {
	Weights            Weights
	HighConfidence     float64 // total score at or above which confidence is high
	MediumConfidence   float64 // total score at or above which confidence is medium
	LogDistanceDivisor float64 // orders of magnitude at which row similarity reaches 0
	MatchThreshold     float64 // minimum cosine for a column match
}

// DefaultConfig returns the tuned scorer defaults.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		HighConfidence:     0.75,
		MediumConfidence:   0.50,
		LogDistanceDivisor: 3,
		MatchThreshold:     0.70,
	}
}

// Scorer computes the multi-factor similarity between two table signatures.
// A nil embedder disables per-column matching but not the total score.
type Scorer struct {
	cfg      Config
	embedder ColumnEmbedder
	logger   *slog.Logger
}

// NewScorer validates the config and builds a scorer.
func NewScorer(cfg Config, embedder ColumnEmbedder, logger *slog.Logger) (*Scorer, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.HighConfidence == 0 {
		cfg.HighConfidence = 0.75
	}
	if cfg.MediumConfidence == 0 {
		cfg.MediumConfidence = 0.50
	}
	if cfg.LogDistanceDivisor == 0 {
		cfg.LogDistanceDivisor = 3
	}
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = 0.70
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{cfg: cfg, embedder: embedder, logger: logger}, nil
}

// Score compares two signatures. It never fails: a missing embedding, an
// empty signature, or a failed component degrades that component to 0 so
// batch detection survives per-pair problems.
func (s *Scorer) Score(ctx context.Context, src, tgt models.TableSignature) models.SimilarityScore {
	semantic := models.ClampUnit(Cosine(src.ColumnEmbedding, tgt.ColumnEmbedding))

	typeOverlap := Jaccard(
		models.SignatureTokens(src.TypeSignature),
		models.SignatureTokens(tgt.TypeSignature),
	)
	nameOverlap := Jaccard(
		models.SignatureTokens(src.NameSignature),
		models.SignatureTokens(tgt.NameSignature),
	)
	schema := (typeOverlap + nameOverlap) / 2

	statistical := s.statisticalScore(src, tgt)
	relationship := Jaccard(models.FKEntities(src.Columns), models.FKEntities(tgt.Columns))

	total := s.cfg.Weights.Semantic*semantic +
		s.cfg.Weights.Schema*schema +
		s.cfg.Weights.Statistical*statistical +
		s.cfg.Weights.Relationship*relationship
	total = models.ClampUnit(total)

	return models.SimilarityScore{
		SourceTable:       src.TableID,
		TargetTable:       tgt.TableID,
		SourcePlatform:    src.Source,
		TargetPlatform:    tgt.Source,
		SemanticScore:     semantic,
		TypeOverlapScore:  typeOverlap,
		NameOverlapScore:  nameOverlap,
		SchemaScore:       schema,
		StatisticalScore:  statistical,
		RelationshipScore: relationship,
		TotalScore:        total,
		Confidence:        s.confidence(total),
		MatchingColumns:   s.matchColumns(ctx, src, tgt),
	}
}

func (s *Scorer) confidence(total float64) models.Confidence {
	switch {
	case total >= s.cfg.HighConfidence:
		return models.ConfidenceHigh
	case total >= s.cfg.MediumConfidence:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// statisticalScore averages row-count and column-count similarity. Row
// similarity is full within ~1 order of magnitude and zero once the counts
// are LogDistanceDivisor orders apart; unknown row counts score a neutral
// 0.5 rather than penalizing the pair.
func (s *Scorer) statisticalScore(src, tgt models.TableSignature) float64 {
	rowSim := 0.5
	if src.RowCount > 0 && tgt.RowCount > 0 {
		logDistance := math.Abs(
			math.Log10(float64(src.RowCount)+1) - math.Log10(float64(tgt.RowCount)+1))
		rowSim = math.Max(0, 1-logDistance/s.cfg.LogDistanceDivisor)
	}

	colSim := 0.0
	maxCols := max(src.ColumnCount, tgt.ColumnCount)
	if maxCols > 0 {
		colSim = float64(min(src.ColumnCount, tgt.ColumnCount)) / float64(maxCols)
	}

	return (rowSim + colSim) / 2
}

// matchColumns greedily pairs each source column with its best target
// column above the match threshold. The assignment is deliberately greedy:
// two source columns may claim the same target. An embedding failure logs a
// warning and yields no matches rather than aborting the comparison.
func (s *Scorer) matchColumns(ctx context.Context, src, tgt models.TableSignature) []models.ColumnMatch {
	if s.embedder == nil || len(src.Columns) == 0 || len(tgt.Columns) == 0 {
		return nil
	}

	tgtEmbeddings := make([][]float32, len(tgt.Columns))
	for i, col := range tgt.Columns {
		if col.Name == "" {
			continue
		}
		emb, err := s.embedder.EmbedColumn(ctx, col.Name)
		if err != nil {
			s.logger.Warn("column embedding failed, skipping column matches",
				"table", tgt.TableID, "column", col.Name, "error", err)
			return nil
		}
		tgtEmbeddings[i] = emb
	}

	var matches []models.ColumnMatch
	for _, srcCol := range src.Columns {
		if srcCol.Name == "" {
			continue
		}
		srcEmb, err := s.embedder.EmbedColumn(ctx, srcCol.Name)
		if err != nil {
			s.logger.Warn("column embedding failed, skipping column matches",
				"table", src.TableID, "column", srcCol.Name, "error", err)
			return matches
		}

		bestSim := 0.0
		bestMatch := ""
		for i, tgtCol := range tgt.Columns {
			if tgtEmbeddings[i] == nil {
				continue
			}
			sim := Cosine(srcEmb, tgtEmbeddings[i])
			if sim > bestSim && sim >= s.cfg.MatchThreshold {
				bestSim = sim
				bestMatch = tgtCol.Name
			}
		}
		if bestMatch != "" {
			matches = append(matches, models.ColumnMatch{
				SourceColumn: srcCol.Name,
				TargetColumn: bestMatch,
				Similarity:   math.Round(bestSim*1000) / 1000,
			})
		}
	}
	return matches
}
