package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/llm"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/similarity"
)

// DetectionService runs full duplicate-detection sweeps between two
// platforms and persists the findings.
type DetectionService struct {
	db        *db.Client
	embedder  *llm.Embedder
	scorerCfg similarity.Config
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewDetectionService creates a duplicate-detection service.
func NewDetectionService(
	database *db.Client,
	embedder *llm.Embedder,
	scorerCfg similarity.Config,
	collector *metrics.Collector,
	logger *slog.Logger,
) *DetectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetectionService{
		db:        database,
		embedder:  embedder,
		scorerCfg: scorerCfg,
		metrics:   collector,
		logger:    logger,
	}
}

// RunOptions controls one sweep.
type RunOptions struct {
	// MinThreshold overrides the configured score floor when > 0.
	MinThreshold float64

	// Persist writes similar_to edges and a detection_run record.
	Persist bool

	// OnProgress receives (pairsDone, pairsTotal) after each scored pair.
	OnProgress func(done, total int)
}

// Report summarizes one completed sweep.
type Report struct {
	RunID          string                   `json:"run_id"`
	SourcePlatform models.Platform          `json:"source_platform"`
	TargetPlatform models.Platform          `json:"target_platform"`
	SourceTables   int                      `json:"source_tables"`
	TargetTables   int                      `json:"target_tables"`
	PairsScored    int                      `json:"pairs_scored"`
	Matches        []models.SimilarityScore `json:"matches"`
	HighCount      int                      `json:"high_count"`
	MediumCount    int                      `json:"medium_count"`
	LowCount       int                      `json:"low_count"`
	Persisted      int                      `json:"persisted"`
	Duration       time.Duration            `json:"duration"`
}

// Run sweeps every source/target table pair, scores them, and returns the
// matches above threshold sorted by score descending.
func (s *DetectionService) Run(
	ctx context.Context,
	source, target models.Platform,
	opts RunOptions,
) (*Report, error) {
	started := time.Now()
	runID := uuid.NewString()

	sourceSnapshot, err := s.db.QueryLoadSnapshot(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load %s snapshot: %w", source, err)
	}
	targetSnapshot, err := s.db.QueryLoadSnapshot(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("load %s snapshot: %w", target, err)
	}

	// Column embeddings are memoized across the sweep: normalized column
	// names repeat heavily between warehouse tables.
	cache := similarity.NewCachedColumnEmbedder(s.embedder)
	scorer, err := similarity.NewScorer(s.scorerCfg, cache, s.logger)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	detector := similarity.NewDetector(scorer, s.logger)

	s.logger.Info("starting duplicate detection",
		"run_id", runID,
		"source", source, "source_tables", len(sourceSnapshot.Tables),
		"target", target, "target_tables", len(targetSnapshot.Tables))

	scoreStart := time.Now()
	matches, err := detector.Detect(ctx, sourceSnapshot, targetSnapshot, similarity.DetectOptions{
		MinThreshold: opts.MinThreshold,
		OnProgress:   opts.OnProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	s.metrics.RecordTiming(metrics.OpPairScoring, time.Since(scoreStart))

	report := &Report{
		RunID:          runID,
		SourcePlatform: source,
		TargetPlatform: target,
		SourceTables:   len(sourceSnapshot.Tables),
		TargetTables:   len(targetSnapshot.Tables),
		PairsScored:    len(sourceSnapshot.Tables) * len(targetSnapshot.Tables),
		Matches:        matches,
	}
	for _, m := range matches {
		switch m.Confidence {
		case models.ConfidenceHigh:
			report.HighCount++
		case models.ConfidenceMedium:
			report.MediumCount++
		default:
			report.LowCount++
		}
	}

	if opts.Persist {
		written, err := s.db.QueryCreateSimilarityEdges(ctx, runID, matches)
		if err != nil {
			return nil, fmt.Errorf("persist matches: %w", err)
		}
		report.Persisted = written

		threshold := opts.MinThreshold
		if threshold <= 0 {
			threshold = similarity.DefaultMinThreshold
		}
		err = s.db.QueryRecordDetectionRun(ctx, db.DetectionRun{
			RunID:          runID,
			SourcePlatform: source,
			TargetPlatform: target,
			PairsScored:    report.PairsScored,
			PairsKept:      len(matches),
			MinThreshold:   threshold,
			StartedAt:      started,
		})
		if err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(started)
	s.logger.Info("duplicate detection complete",
		"run_id", runID,
		"pairs_scored", report.PairsScored,
		"matches", len(matches),
		"high", report.HighCount, "medium", report.MediumCount, "low", report.LowCount,
		"duration", report.Duration)
	return report, nil
}

// ListDuplicates returns previously persisted findings, best first.
func (s *DetectionService) ListDuplicates(ctx context.Context, confidence *models.Confidence, limit int) ([]db.SimilarityEdge, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.db.QueryListDuplicates(ctx, confidence, limit)
}
