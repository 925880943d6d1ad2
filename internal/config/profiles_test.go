package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/ranking"
)

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}
	return path
}

func TestLoadProfilesEmptyPath(t *testing.T) {
	profiles, err := LoadProfiles("")
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if got := profiles.RankingWeights("default"); got != ranking.DefaultWeights() {
		t.Errorf("default weights = %+v", got)
	}
	if profiles.MaxCentrality != ranking.DefaultMaxCentrality {
		t.Errorf("MaxCentrality = %d", profiles.MaxCentrality)
	}
	if profiles.Detection.MinThreshold != 0.30 {
		t.Errorf("detection threshold = %f", profiles.Detection.MinThreshold)
	}
}

func TestLoadProfilesOverlay(t *testing.T) {
	path := writeProfileFile(t, `
ranking:
  default:
    semantic: 0.6
    structural: 0.4
max_centrality: 10
detection:
  min_threshold: 0.45
`)
	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}

	want := ranking.Weights{Semantic: 0.6, Structural: 0.4}
	if got := profiles.RankingWeights("default"); got != want {
		t.Errorf("default weights = %+v, want %+v", got, want)
	}
	if profiles.MaxCentrality != 10 {
		t.Errorf("MaxCentrality = %d, want 10", profiles.MaxCentrality)
	}
	if profiles.Detection.MinThreshold != 0.45 {
		t.Errorf("detection threshold = %f, want 0.45", profiles.Detection.MinThreshold)
	}
	// Untouched sections keep their defaults
	if profiles.Similarity.MatchThreshold != 0.70 {
		t.Errorf("match threshold = %f, want default 0.70", profiles.Similarity.MatchThreshold)
	}
}

func TestLoadProfilesRejectsBadWeights(t *testing.T) {
	path := writeProfileFile(t, `
ranking:
  skewed:
    semantic: 0.9
    structural: 0.9
`)
	if _, err := LoadProfiles(path); err == nil {
		t.Error("expected error for weights not summing to 1")
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRankingWeightsFallback(t *testing.T) {
	profiles := DefaultProfiles()

	balanced := ranking.Weights{Semantic: 0.6, Structural: 0.4}
	if got := profiles.RankingWeights("balanced"); got != balanced {
		t.Errorf("balanced = %+v, want %+v", got, balanced)
	}
	// Unknown and empty names fall back to the default profile
	if got := profiles.RankingWeights("nonsense"); got != ranking.DefaultWeights() {
		t.Errorf("unknown profile = %+v", got)
	}
	if got := profiles.RankingWeights(""); got != ranking.DefaultWeights() {
		t.Errorf("empty profile = %+v", got)
	}

	// No default entry at all still yields usable weights
	profiles.Ranking = map[string]ranking.Weights{}
	if got := profiles.RankingWeights("anything"); got != ranking.DefaultWeights() {
		t.Errorf("missing default = %+v", got)
	}
}

func TestScorerConfig(t *testing.T) {
	profiles := DefaultProfiles()
	profiles.Similarity.MatchThreshold = 0.85
	profiles.Similarity.LogDistanceDivisor = 2

	cfg := profiles.ScorerConfig()
	if cfg.MatchThreshold != 0.85 {
		t.Errorf("MatchThreshold = %f", cfg.MatchThreshold)
	}
	if cfg.LogDistanceDivisor != 2 {
		t.Errorf("LogDistanceDivisor = %f", cfg.LogDistanceDivisor)
	}
	if cfg.Weights != profiles.Similarity.Weights {
		t.Errorf("weights not carried: %+v", cfg.Weights)
	}
}
