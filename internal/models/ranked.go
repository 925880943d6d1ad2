package models

// Candidate is one entity returned by semantic search, enriched with graph
// context, before hybrid ranking. The caller fetches all collaborator data;
// the ranker only combines it.
type Candidate struct {
	EntityID      string   `json:"entity_id"`
	Platform      Platform `json:"platform,omitempty"`
	SemanticScore float64  `json:"semantic_score"`
	Centrality    int      `json:"centrality"`
	RowCount      int64    `json:"row_count"`
	Neighbors     []string `json:"neighbors,omitempty"`
}

// RankedResult is one ranked candidate for a retrieval query.
// Created fresh per query, never persisted.
type RankedResult struct {
	EntityID        string   `json:"entity_id"`
	Platform        Platform `json:"platform,omitempty"`
	SemanticScore   float64  `json:"semantic_score"`
	StructuralScore float64  `json:"structural_score"`
	FinalScore      float64  `json:"final_score"`
	Centrality      int      `json:"centrality"`
	RowCount        int64    `json:"row_count"`
	Neighbors       []string `json:"neighbors,omitempty"`
	Reasoning       string   `json:"reasoning"`
}
