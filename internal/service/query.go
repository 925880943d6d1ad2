package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/llm"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/ranking"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/routing"
)

// DefaultResultLimit caps results per route.
const DefaultResultLimit = 10

// lineageDepth bounds lineage traversal per direction.
const lineageDepth = 3

var schemaNameRe = regexp.MustCompile(`(?:in (?:the )?|schema\s+)([A-Za-z_][A-Za-z0-9_]*)\s+schema|schema\s+([A-Za-z_][A-Za-z0-9_]*)`)

// QueryService answers natural-language catalog questions by routing them
// to the retrieval strategy the question calls for.
type QueryService struct {
	db         *db.Client
	embedder   *llm.Embedder
	model      *llm.Model
	classifier *routing.Classifier
	routeModel routing.RouteClassifier
	adapter    *routing.ConfidenceAdapter
	ranker     *ranking.Ranker
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewQueryService creates a query service. model and routeModel are
// optional: without a model no answer synthesis happens, and without a
// trained route model routing falls back to the rule classifier.
func NewQueryService(
	database *db.Client,
	embedder *llm.Embedder,
	model *llm.Model,
	routeModel routing.RouteClassifier,
	ranker *ranking.Ranker,
	collector *metrics.Collector,
	logger *slog.Logger,
) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		db:         database,
		embedder:   embedder,
		model:      model,
		classifier: routing.NewClassifier(),
		routeModel: routeModel,
		adapter:    routing.NewConfidenceAdapter(),
		ranker:     ranker,
		metrics:    collector,
		logger:     logger,
	}
}

// AskOptions tunes one question.
type AskOptions struct {
	Limit      int
	Synthesize bool
}

// Answer is the full response to one question.
type Answer struct {
	Question  string                `json:"question"`
	Route     models.RouteDecision  `json:"route"`
	Plan      models.ExecutionPlan  `json:"plan"`
	Results   []models.RankedResult `json:"results"`
	Threshold *routing.RowThreshold `json:"threshold,omitempty"`
	Summary   string                `json:"summary,omitempty"`
}

// Ask routes a question, executes the plan, and optionally synthesizes a
// natural-language answer over the results.
func (s *QueryService) Ask(ctx context.Context, question string, opts AskOptions) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("empty question")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	answer := &Answer{Question: question}

	routeStart := time.Now()
	answer.Route, answer.Plan = s.route(question)
	s.metrics.RecordTiming(metrics.OpRouting, time.Since(routeStart))

	s.logger.Info("routed question",
		"route", answer.Route.Route, "mode", answer.Plan.Mode, "routes", answer.Plan.Routes)

	if answer.Route.Route == models.IntentMetadataFilter {
		if threshold, ok := routing.ParseRowThreshold(question); ok {
			answer.Threshold = &threshold
		}
	}

	if answer.Plan.Mode == models.ModeSingle {
		results, err := s.executeRoute(ctx, answer.Plan.Routes[0], question, limit)
		if err != nil {
			return nil, err
		}
		answer.Results = results
	} else {
		routeResults := make(map[models.Intent][]models.RankedResult, len(answer.Plan.Routes))
		for _, route := range answer.Plan.Routes {
			results, err := s.executeRoute(ctx, route, question, limit)
			if err != nil {
				// One failed route degrades the fusion, it does not fail
				// the question.
				s.logger.Warn("route execution failed", "route", route, "error", err)
				continue
			}
			routeResults[route] = results
		}
		if len(routeResults) == 0 {
			return nil, fmt.Errorf("all routes failed for question")
		}
		answer.Results = s.adapter.Merge(routeResults, answer.Plan.Weights)
		if len(answer.Results) > limit {
			answer.Results = answer.Results[:limit]
		}
	}

	if opts.Synthesize && s.model != nil && len(answer.Results) > 0 {
		summary, err := s.model.SynthesizeAnswer(ctx, question, answer.Results)
		if err != nil {
			s.logger.Warn("answer synthesis failed", "error", err)
		} else {
			answer.Summary = summary
		}
	}

	return answer, nil
}

// route decides the execution plan. A trained route model classifies by
// extracted features; without one the rule classifier picks a single route.
func (s *QueryService) route(question string) (models.RouteDecision, models.ExecutionPlan) {
	if s.routeModel != nil {
		features := routing.ExtractFeatures(question)
		probs, err := s.routeModel.PredictRoutes(features)
		if err != nil {
			s.logger.Warn("route model failed, falling back to rules", "error", err)
		} else {
			plan := s.adapter.Decide(probs)
			decision := models.RouteDecision{
				Route:         plan.Routes[0],
				Confidence:    probs[plan.Routes[0]],
				Probabilities: probs,
			}
			return decision, plan
		}
	}

	intent := s.classifier.Classify(question)
	return models.RouteDecision{Route: intent}, models.ExecutionPlan{
		Mode:    models.ModeSingle,
		Routes:  []models.Intent{intent},
		Weights: map[models.Intent]float64{intent: 1},
	}
}

func (s *QueryService) executeRoute(ctx context.Context, route models.Intent, question string, limit int) ([]models.RankedResult, error) {
	switch route {
	case models.IntentSemanticDiscovery:
		return s.searchAndRank(ctx, question, nil, limit)

	case models.IntentDatabricksDiscovery:
		platform := models.PlatformDatabricks
		return s.searchAndRank(ctx, question, &platform, limit)

	case models.IntentCrossSource:
		return s.crossSource(ctx, question, limit)

	case models.IntentDuplicateDetection:
		return s.duplicates(ctx, limit)

	case models.IntentLineageQuery:
		return s.lineage(ctx, question)

	case models.IntentRelationshipTraversal:
		return s.related(ctx, question)

	case models.IntentSensitivityQuery:
		return s.sensitive(ctx, limit)

	case models.IntentMetadataFilter:
		return s.metadataFilter(ctx, question, limit)

	default:
		return nil, fmt.Errorf("unknown route: %s", route)
	}
}

// searchAndRank is the hybrid retrieval path: vector search over column-bag
// embeddings, graph context per hit, then semantic/structural fusion.
func (s *QueryService) searchAndRank(ctx context.Context, question string, platform *models.Platform, limit int) ([]models.RankedResult, error) {
	embedStart := time.Now()
	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	s.metrics.RecordTiming(metrics.OpEmbedding, time.Since(embedStart))

	searchStart := time.Now()
	candidates, err := s.db.QuerySemanticSearch(ctx, embedding, platform, limit)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTiming(metrics.OpDBSearch, time.Since(searchStart))

	for i := range candidates {
		centrality, neighbors, err := s.db.QueryGraphContext(ctx, candidates[i].EntityID)
		if err != nil {
			s.logger.Warn("graph context lookup failed",
				"table", candidates[i].EntityID, "error", err)
			continue
		}
		candidates[i].Centrality = centrality
		candidates[i].Neighbors = neighbors
	}

	results := s.ranker.Rank(candidates)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// crossSource surfaces persisted duplicate pairs that span platforms; when
// none exist yet it falls back to an unfiltered hybrid search.
func (s *QueryService) crossSource(ctx context.Context, question string, limit int) ([]models.RankedResult, error) {
	edges, err := s.db.QueryListDuplicates(ctx, nil, limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]models.RankedResult, 0, limit)
	for _, e := range edges {
		if e.SourcePlatform == e.TargetPlatform {
			continue
		}
		results = append(results, edgeResult(e))
		if len(results) == limit {
			break
		}
	}
	if len(results) > 0 {
		return results, nil
	}
	return s.searchAndRank(ctx, question, nil, limit)
}

func (s *QueryService) duplicates(ctx context.Context, limit int) ([]models.RankedResult, error) {
	edges, err := s.db.QueryListDuplicates(ctx, nil, limit)
	if err != nil {
		return nil, err
	}
	results := make([]models.RankedResult, 0, len(edges))
	for _, e := range edges {
		results = append(results, edgeResult(e))
	}
	return results, nil
}

func (s *QueryService) lineage(ctx context.Context, question string) ([]models.RankedResult, error) {
	record, err := s.resolveMentionedTable(ctx, question)
	if err != nil {
		return nil, err
	}
	tableID := db.TableKey(record.Platform, record.Name)

	upstream, downstream, err := s.db.QueryLineage(ctx, tableID, lineageDepth)
	if err != nil {
		return nil, err
	}

	results := make([]models.RankedResult, 0, len(upstream)+len(downstream))
	for _, name := range upstream {
		results = append(results, models.RankedResult{
			EntityID:  name,
			Reasoning: fmt.Sprintf("upstream source of %s", record.Name),
		})
	}
	for _, name := range downstream {
		results = append(results, models.RankedResult{
			EntityID:  name,
			Reasoning: fmt.Sprintf("derived from %s", record.Name),
		})
	}
	return results, nil
}

func (s *QueryService) related(ctx context.Context, question string) ([]models.RankedResult, error) {
	record, err := s.resolveMentionedTable(ctx, question)
	if err != nil {
		return nil, err
	}

	names, err := s.db.QueryRelatedTables(ctx, db.TableKey(record.Platform, record.Name))
	if err != nil {
		return nil, err
	}

	results := make([]models.RankedResult, 0, len(names))
	for _, name := range names {
		results = append(results, models.RankedResult{
			EntityID:  name,
			Reasoning: fmt.Sprintf("linked to %s by reference", record.Name),
		})
	}
	return results, nil
}

func (s *QueryService) sensitive(ctx context.Context, limit int) ([]models.RankedResult, error) {
	records, err := s.db.QuerySensitiveTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	results := make([]models.RankedResult, 0, len(records))
	for _, r := range records {
		reasoning := "contains PII"
		if r.SensitivityLevel != nil {
			reasoning = fmt.Sprintf("contains PII (%s)", *r.SensitivityLevel)
		}
		results = append(results, recordResult(r, reasoning))
	}
	return results, nil
}

// metadataFilter handles structured filters: row-count thresholds, largest
// tables, and schema membership. A filter question without a recognizable
// constraint falls back to the largest tables.
func (s *QueryService) metadataFilter(ctx context.Context, question string, limit int) ([]models.RankedResult, error) {
	if threshold, ok := routing.ParseRowThreshold(question); ok {
		records, err := s.db.QueryTablesByRowCount(ctx, threshold, nil, limit)
		if err != nil {
			return nil, err
		}
		return rowCountResults(records), nil
	}

	if schema, ok := extractSchemaName(question); ok {
		records, err := s.db.QueryTablesInSchema(ctx, schema)
		if err != nil {
			return nil, err
		}
		if len(records) > limit {
			records = records[:limit]
		}
		results := make([]models.RankedResult, 0, len(records))
		for _, r := range records {
			results = append(results, recordResult(r, fmt.Sprintf("in schema %s", schema)))
		}
		return results, nil
	}

	records, err := s.db.QueryLargestTables(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rowCountResults(records), nil
}

// resolveMentionedTable finds the table a question refers to by its
// uppercase or snake_case mention, trying each platform naming convention.
func (s *QueryService) resolveMentionedTable(ctx context.Context, question string) (*db.TableRecord, error) {
	name, ok := extractTableName(question)
	if !ok {
		return nil, fmt.Errorf("no table name mentioned in question")
	}

	lookups := []struct {
		platform models.Platform
		name     string
	}{
		{models.PlatformSnowflake, strings.ToUpper(name)},
		{models.PlatformSnowflake, name},
		{models.PlatformDatabricks, strings.ToLower(name)},
		{models.PlatformDatabricks, name},
	}
	for _, l := range lookups {
		record, err := s.db.QueryGetTable(ctx, l.platform, l.name)
		if err == nil {
			return record, nil
		}
	}
	return nil, fmt.Errorf("table %q: %w", name, db.ErrNotFound)
}

// extractTableName pulls the first token that looks like a table
// identifier: all-uppercase, or lowercase containing an underscore.
func extractTableName(question string) (string, bool) {
	for _, token := range strings.Fields(question) {
		token = strings.Trim(token, ".,!?\"'()")
		if len(token) < 3 {
			continue
		}
		if isUppercaseIdent(token) || (strings.Contains(token, "_") && isLowercaseIdent(token)) {
			return token, true
		}
	}
	return "", false
}

func isUppercaseIdent(token string) bool {
	hasLetter := false
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

func isLowercaseIdent(token string) bool {
	hasLetter := false
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

// extractSchemaName pulls the schema identifier from phrasings like
// "tables in the SALES schema" or "schema SALES".
func extractSchemaName(question string) (string, bool) {
	m := schemaNameRe.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	for _, group := range m[1:] {
		if group != "" && !strings.EqualFold(group, "the") {
			return group, true
		}
	}
	return "", false
}

func edgeResult(e db.SimilarityEdge) models.RankedResult {
	return models.RankedResult{
		EntityID: fmt.Sprintf("%s:%s <-> %s:%s",
			e.SourcePlatform, e.SourceTable, e.TargetPlatform, e.TargetTable),
		FinalScore: e.TotalScore,
		Reasoning:  fmt.Sprintf("%s confidence duplicate (run %s)", e.Confidence, e.RunID),
	}
}

func recordResult(r db.TableRecord, reasoning string) models.RankedResult {
	return models.RankedResult{
		EntityID:  db.TableKey(r.Platform, r.Name),
		Platform:  r.Platform,
		RowCount:  r.RowCount,
		Reasoning: reasoning,
	}
}

func rowCountResults(records []db.TableRecord) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(records))
	for _, r := range records {
		results = append(results, recordResult(r, fmt.Sprintf("%d rows", r.RowCount)))
	}
	return results
}
