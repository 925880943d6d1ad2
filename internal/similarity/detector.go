package similarity

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// DefaultMinThreshold is the total score below which a pair is discarded.
const DefaultMinThreshold = 0.30

// ErrNoSignatures indicates a snapshot arrived with no tables at all, which
// means upstream extraction failed before any scoring could start. Callers
// can tell this apart from a sweep that legitimately found nothing.
var ErrNoSignatures = errors.New("no table signatures in snapshot")

// DetectOptions tunes one detection sweep.
type DetectOptions struct {
	// MinThreshold overrides DefaultMinThreshold when > 0.
	MinThreshold float64

	// OnProgress, when set, is called after each scored pair with the
	// number of pairs done and the total. Used by the CLI progress display.
	OnProgress func(done, total int)
}

// Detector sweeps two platform snapshots for cross-source duplicates.
type Detector struct {
	scorer *Scorer
	logger *slog.Logger
}

// NewDetector builds a detector around a scorer.
func NewDetector(scorer *Scorer, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{scorer: scorer, logger: logger}
}

// Detect computes the full |A|×|B| cross product, keeps pairs scoring at or
// above the threshold, and returns them sorted by total score descending
// (ties break on source then target id). The same table may appear in
// multiple retained pairs; no global matching constraint is applied.
func (d *Detector) Detect(ctx context.Context, a, b models.Snapshot, opts DetectOptions) ([]models.SimilarityScore, error) {
	if len(a.Tables) == 0 || len(b.Tables) == 0 {
		return nil, ErrNoSignatures
	}

	threshold := opts.MinThreshold
	if threshold <= 0 {
		threshold = DefaultMinThreshold
	}

	d.logger.Info("starting duplicate sweep",
		"source_platform", a.Platform, "source_tables", len(a.Tables),
		"target_platform", b.Platform, "target_tables", len(b.Tables),
		"threshold", threshold)

	total := len(a.Tables) * len(b.Tables)
	done := 0
	var results []models.SimilarityScore

	for _, src := range a.Tables {
		for _, tgt := range b.Tables {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			score := d.scorer.Score(ctx, src, tgt)
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, total)
			}

			if score.TotalScore >= threshold {
				results = append(results, score)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		if results[i].SourceTable != results[j].SourceTable {
			return results[i].SourceTable < results[j].SourceTable
		}
		return results[i].TargetTable < results[j].TargetTable
	})

	d.logger.Info("duplicate sweep complete",
		"pairs_scored", total, "matches", len(results))
	return results, nil
}
