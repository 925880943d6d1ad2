package models

// Confidence buckets a continuous similarity score into a coarse tier.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ColumnMatch records one source column matched to its best target column.
type ColumnMatch struct {
	SourceColumn string  `json:"source_column"`
	TargetColumn string  `json:"target_column"`
	Similarity   float64 `json:"similarity"`
}

// SimilarityScore is the result of comparing two table signatures.
// Every component and TotalScore lies in [0,1]; TotalScore is symmetric in
// its inputs because every component is a symmetric function.
type SimilarityScore struct {
	SourceTable       string        `json:"source_table"`
	TargetTable       string        `json:"target_table"`
	SourcePlatform    Platform      `json:"source_platform"`
	TargetPlatform    Platform      `json:"target_platform"`
	SemanticScore     float64       `json:"semantic_score"`
	TypeOverlapScore  float64       `json:"type_overlap_score"`
	NameOverlapScore  float64       `json:"name_overlap_score"`
	SchemaScore       float64       `json:"schema_score"`
	StatisticalScore  float64       `json:"statistical_score"`
	RelationshipScore float64       `json:"relationship_score"`
	TotalScore        float64       `json:"total_score"`
	Confidence        Confidence    `json:"confidence"`
	MatchingColumns   []ColumnMatch `json:"matching_columns,omitempty"`
}

// ClampUnit restricts v to [0,1]. Component scores are clamped at
// construction so downstream weighting can rely on the bound.
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
