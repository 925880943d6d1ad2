package models

// Intent is the retrieval strategy selected for a natural-language question.
type Intent string

const (
	IntentSensitivityQuery      Intent = "sensitivity_query"
	IntentCrossSource           Intent = "cross_source"
	IntentDatabricksDiscovery   Intent = "databricks_discovery"
	IntentDuplicateDetection    Intent = "duplicate_detection"
	IntentLineageQuery          Intent = "lineage_query"
	IntentRelationshipTraversal Intent = "relationship_traversal"
	IntentMetadataFilter        Intent = "metadata_filter"
	IntentSemanticDiscovery     Intent = "semantic_discovery"
)

// RouteDecision is the outcome of routing one question. Confidence and
// Probabilities are only set when a trained classifier produced the route.
type RouteDecision struct {
	Route         Intent             `json:"route"`
	Confidence    float64            `json:"confidence,omitempty"`
	Probabilities map[Intent]float64 `json:"probabilities,omitempty"`
}

// ExecutionMode selects between running one route and fusing several.
type ExecutionMode string

const (
	ModeSingle ExecutionMode = "single"
	ModeMulti  ExecutionMode = "multi"
)

// ExecutionPlan tells the caller which route(s) to execute. In multi mode
// Routes holds the top routes by probability with their fusion weights.
type ExecutionPlan struct {
	Mode    ExecutionMode      `json:"mode"`
	Routes  []Intent           `json:"routes"`
	Weights map[Intent]float64 `json:"weights"`
}
