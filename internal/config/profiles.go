package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/ranking"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/similarity"
)

// Profiles holds the tunable scoring configuration. All constants here were
// calibrated empirically; the file exists so recalibration doesn't require
// a rebuild.
type Profiles struct {
	// Ranking maps profile names to semantic/structural weight pairs.
	// The "default" profile is used unless a query asks for another.
	Ranking map[string]ranking.Weights `yaml:"ranking"`

	// MaxCentrality is the expected maximum entity degree (normalizes the
	// structural score).
	MaxCentrality int `yaml:"max_centrality"`

	Similarity SimilarityProfile `yaml:"similarity"`

	Detection DetectionProfile `yaml:"detection"`
}

// SimilarityProfile tunes the table similarity scorer.
type SimilarityProfile struct {
	Weights            similarity.Weights `yaml:"weights"`
	MatchThreshold     float64            `yaml:"match_threshold"`
	LogDistanceDivisor float64            `yaml:"log_distance_divisor"`
}

// DetectionProfile tunes the duplicate sweep.
type DetectionProfile struct {
	MinThreshold float64 `yaml:"min_threshold"`
}

// DefaultProfiles returns the built-in tuning.
func DefaultProfiles() Profiles {
	return Profiles{
		Ranking: map[string]ranking.Weights{
			"default":    ranking.DefaultWeights(),
			"balanced":   {Semantic: 0.6, Structural: 0.4},
			"structural": {Semantic: 0.7, Structural: 0.3},
		},
		MaxCentrality: ranking.DefaultMaxCentrality,
		Similarity: SimilarityProfile{
			Weights:            similarity.DefaultWeights(),
			MatchThreshold:     0.70,
			LogDistanceDivisor: 3,
		},
		Detection: DetectionProfile{
			MinThreshold: similarity.DefaultMinThreshold,
		},
	}
}

// LoadProfiles reads a YAML profile file, filling omitted sections from the
// defaults. An empty path returns the defaults unchanged.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profiles{}, fmt.Errorf("read profiles: %w", err)
	}
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return Profiles{}, fmt.Errorf("parse profiles: %w", err)
	}

	// Validate every ranking profile up front so a bad file fails at load,
	// not mid-query.
	for name, w := range profiles.Ranking {
		if err := w.Validate(); err != nil {
			return Profiles{}, fmt.Errorf("ranking profile %q: %w", name, err)
		}
	}
	if err := profiles.Similarity.Weights.Validate(); err != nil {
		return Profiles{}, fmt.Errorf("similarity weights: %w", err)
	}
	return profiles, nil
}

// RankingWeights returns the named ranking profile, or the default profile
// when the name is unknown or empty.
func (p Profiles) RankingWeights(name string) ranking.Weights {
	if name != "" {
		if w, ok := p.Ranking[name]; ok {
			return w
		}
	}
	if w, ok := p.Ranking["default"]; ok {
		return w
	}
	return ranking.DefaultWeights()
}

// ScorerConfig assembles a similarity scorer config from the profile.
func (p Profiles) ScorerConfig() similarity.Config {
	return similarity.Config{
		Weights:            p.Similarity.Weights,
		HighConfidence:     0.75,
		MediumConfidence:   0.50,
		LogDistanceDivisor: p.Similarity.LogDistanceDivisor,
		MatchThreshold:     p.Similarity.MatchThreshold,
	}
}
