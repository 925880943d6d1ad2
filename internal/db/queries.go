// Package db provides SurrealDB query functions for the table catalog.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/routing"
)

// TableRecord is the database shape of a stored table signature.
type TableRecord struct {
	ID               surrealmodels.RecordID `json:"id"`
	Name             string                 `json:"name"`
	Platform         models.Platform        `json:"platform"`
	SchemaName       *string                `json:"schema_name,omitempty"`
	Columns          []models.Column        `json:"columns"`
	ColumnText       string                 `json:"column_text"`
	TypeSignature    string                 `json:"type_signature"`
	NameSignature    string                 `json:"name_signature"`
	RowCount         int64                  `json:"row_count"`
	ColumnCount      int                    `json:"column_count"`
	Embedding        []float32              `json:"embedding,omitempty"`
	ContainsPII      bool                   `json:"contains_pii"`
	SensitivityLevel *string                `json:"sensitivity_level,omitempty"`
	ExtractedAt      time.Time              `json:"extracted_at,omitempty"`
}

// PlatformCount represents a platform with its table count.
type PlatformCount struct {
	Platform models.Platform `json:"platform"`
	Count    int             `json:"count"`
}

// SimilarityEdge is one persisted duplicate-candidate edge with both
// endpoint names resolved.
type SimilarityEdge struct {
	SourceTable       string            `json:"source_table"`
	TargetTable       string            `json:"target_table"`
	SourcePlatform    models.Platform   `json:"source_platform"`
	TargetPlatform    models.Platform   `json:"target_platform"`
	TotalScore        float64           `json:"total_score"`
	SemanticScore     float64           `json:"semantic_score"`
	SchemaScore       float64           `json:"schema_score"`
	StatisticalScore  float64           `json:"statistical_score"`
	RelationshipScore float64           `json:"relationship_score"`
	Confidence        models.Confidence `json:"confidence"`
	RunID             string            `json:"run_id"`
	DetectedAt        time.Time         `json:"detected_at"`
}

// DetectionRun records one completed duplicate-detection sweep.
type DetectionRun struct {
	RunID          string          `json:"run_id"`
	SourcePlatform models.Platform `json:"source_platform"`
	TargetPlatform models.Platform `json:"target_platform"`
	PairsScored    int             `json:"pairs_scored"`
	PairsKept      int             `json:"pairs_kept"`
	MinThreshold   float64         `json:"min_threshold"`
	StartedAt      time.Time       `json:"started_at"`
}

// TableKey builds the catalog record key for a table on a platform.
func TableKey(platform models.Platform, name string) string {
	return string(platform) + ":" + name
}

// Signature converts a stored record back into the in-memory signature form.
func (r TableRecord) Signature() models.TableSignature {
	schema := ""
	if r.SchemaName != nil {
		schema = *r.SchemaName
	}
	sig := models.NewTableSignature(
		fmt.Sprintf("%v", r.ID.ID),
		r.Platform, schema, r.Name,
		r.RowCount, r.ColumnCount, r.Columns,
	)
	sig.ColumnEmbedding = r.Embedding
	return sig
}

// QueryUpsertTableSignature creates or updates a table signature record.
// Re-extraction of the same platform/name pair overwrites the previous
// record; extracted_at tracks the latest pass.
func (c *Client) QueryUpsertTableSignature(
	ctx context.Context,
	sig models.TableSignature,
	containsPII bool,
	sensitivityLevel *string,
) error {
	var schemaName *string
	if sig.Schema != "" {
		schemaName = &sig.Schema
	}

	sql := `
		UPSERT type::record("table_signature", $id) SET
			name = $name,
			platform = $platform,
			schema_name = $schema_name,
			columns = $columns,
			column_text = $column_text,
			type_signature = $type_signature,
			name_signature = $name_signature,
			row_count = $row_count,
			column_count = $column_count,
			embedding = $embedding,
			contains_pii = $contains_pii,
			sensitivity_level = $sensitivity_level,
			extracted_at = time::now(),
			updated = time::now()
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":                TableKey(sig.Source, sig.Name),
		"name":              sig.Name,
		"platform":          string(sig.Source),
		"schema_name":       schemaName,
		"columns":           sig.Columns,
		"column_text":       sig.ColumnText(),
		"type_signature":    sig.TypeSignature,
		"name_signature":    sig.NameSignature,
		"row_count":         sig.RowCount,
		"column_count":      sig.ColumnCount,
		"embedding":         sig.ColumnEmbedding,
		"contains_pii":      containsPII,
		"sensitivity_level": sensitivityLevel,
	})
	if err != nil {
		return fmt.Errorf("upsert table signature: %w", wrapQueryError(err))
	}
	return nil
}

// QueryGetTable retrieves a table signature record by platform and name.
func (c *Client) QueryGetTable(ctx context.Context, platform models.Platform, name string) (*TableRecord, error) {
	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, `
		SELECT * FROM type::record("table_signature", $id)
	`, map[string]any{"id": TableKey(platform, name)})
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get table %s: %w", TableKey(platform, name), ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// QueryListTables returns all table records for a platform, name-ordered so
// sweeps over the result are deterministic.
func (c *Client) QueryListTables(ctx context.Context, platform models.Platform) ([]TableRecord, error) {
	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, `
		SELECT * FROM table_signature WHERE platform = $platform ORDER BY name ASC
	`, map[string]any{"platform": string(platform)})
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []TableRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryLoadSnapshot assembles the stored signatures of a platform into an
// extraction snapshot for duplicate detection.
func (c *Client) QueryLoadSnapshot(ctx context.Context, platform models.Platform) (models.Snapshot, error) {
	records, err := c.QueryListTables(ctx, platform)
	if err != nil {
		return models.Snapshot{}, err
	}

	snapshot := models.Snapshot{
		Platform:    platform,
		ExtractedAt: time.Now(),
		Tables:      make([]models.TableSignature, 0, len(records)),
	}
	for _, r := range records {
		snapshot.Tables = append(snapshot.Tables, r.Signature())
		if !r.ExtractedAt.IsZero() && r.ExtractedAt.Before(snapshot.ExtractedAt) {
			snapshot.ExtractedAt = r.ExtractedAt
		}
	}
	return snapshot, nil
}

// searchHit is the projection returned by semantic search.
type searchHit struct {
	ID            surrealmodels.RecordID `json:"id"`
	Platform      models.Platform        `json:"platform"`
	RowCount      int64                  `json:"row_count"`
	SemanticScore float64                `json:"semantic_score"`
}

// QuerySemanticSearch performs vector search over table embeddings.
// Returns candidates ordered by cosine similarity; centrality and neighbors
// are filled by QueryGraphContext afterwards.
func (c *Client) QuerySemanticSearch(
	ctx context.Context,
	embedding []float32,
	platform *models.Platform,
	limit int,
) ([]models.Candidate, error) {
	platformClause := ""
	if platform != nil {
		platformClause = "AND platform = $platform"
	}

	// KNN limit must be a literal; ef=40 trades recall for latency
	sql := fmt.Sprintf(`
		SELECT id, platform, row_count,
			vector::similarity::cosine(embedding, $emb) AS semantic_score
		FROM table_signature
		WHERE embedding <|%d,40|> $emb %s
		ORDER BY semantic_score DESC
	`, limit, platformClause)

	vars := map[string]any{"emb": embedding}
	if platform != nil {
		vars["platform"] = string(*platform)
	}

	results, err := surrealdb.Query[[]searchHit](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Candidate{}, nil
	}

	hits := (*results)[0].Result
	candidates := make([]models.Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, models.Candidate{
			EntityID:      fmt.Sprintf("%v", h.ID.ID),
			Platform:      h.Platform,
			SemanticScore: h.SemanticScore,
			RowCount:      h.RowCount,
		})
	}
	return candidates, nil
}

// graphContext is the projection returned by the centrality query.
type graphContext struct {
	Centrality int      `json:"centrality"`
	Neighbors  []string `json:"neighbors"`
}

// QueryGraphContext returns the relationship degree and up to three
// neighbor names for a table. similar_to edges are excluded: duplicate
// candidates are findings, not structure, and must not inflate centrality.
func (c *Client) QueryGraphContext(ctx context.Context, tableID string) (int, []string, error) {
	sql := `
		SELECT
			array::len(->references_entity->table_signature)
			+ array::len(<-references_entity<-table_signature)
			+ array::len(->derives_from->table_signature)
			+ array::len(<-derives_from<-table_signature) AS centrality,
			array::slice(array::distinct(array::concat(
				->references_entity->table_signature.name,
				<-references_entity<-table_signature.name,
				->derives_from->table_signature.name,
				<-derives_from<-table_signature.name
			)), 0, 3) AS neighbors
		FROM type::record("table_signature", $id)
	`

	results, err := surrealdb.Query[[]graphContext](ctx, c.db, sql, map[string]any{"id": tableID})
	if err != nil {
		return 0, nil, fmt.Errorf("graph context: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil, nil
	}
	gc := (*results)[0].Result[0]
	return gc.Centrality, gc.Neighbors, nil
}

// QueryCreateSimilarityEdges persists scored pairs as similar_to relations.
// The sorted unique key makes repeated sweeps overwrite rather than
// accumulate; conflict errors from concurrent sweeps are skipped.
// Returns the number of edges written.
func (c *Client) QueryCreateSimilarityEdges(
	ctx context.Context,
	runID string,
	scores []models.SimilarityScore,
) (int, error) {
	sql := `
		DELETE similar_to WHERE unique_key = <string>string::concat(array::sort([
			<string>type::record("table_signature", $src),
			<string>type::record("table_signature", $tgt)
		]));
		RELATE type::record("table_signature", $src)->similar_to->type::record("table_signature", $tgt) SET
			total_score = $total,
			semantic_score = $semantic,
			schema_score = $schema,
			statistical_score = $statistical,
			relationship_score = $relationship,
			confidence = $confidence,
			matching_columns = $matching_columns,
			run_id = $run_id;
	`

	written := 0
	for _, s := range scores {
		matches := s.MatchingColumns
		if matches == nil {
			matches = []models.ColumnMatch{}
		}
		_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
			"src":              TableKey(s.SourcePlatform, s.SourceTable),
			"tgt":              TableKey(s.TargetPlatform, s.TargetTable),
			"total":            s.TotalScore,
			"semantic":         s.SemanticScore,
			"schema":           s.SchemaScore,
			"statistical":      s.StatisticalScore,
			"relationship":     s.RelationshipScore,
			"confidence":       string(s.Confidence),
			"matching_columns": matches,
			"run_id":           runID,
		})
		if err != nil {
			wrapped := wrapQueryError(err)
			if errors.Is(wrapped, ErrAlreadyExists) || errors.Is(wrapped, ErrTransactionConflict) {
				slog.Warn("skipping similarity edge",
					"source", s.SourceTable, "target", s.TargetTable, "error", wrapped)
				continue
			}
			return written, fmt.Errorf("create similarity edge: %w", wrapped)
		}
		written++
	}
	return written, nil
}

// QueryRecordDetectionRun stores sweep bookkeeping for later audit.
func (c *Client) QueryRecordDetectionRun(ctx context.Context, run DetectionRun) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE detection_run SET
			run_id = $run_id,
			source_platform = $source_platform,
			target_platform = $target_platform,
			pairs_scored = $pairs_scored,
			pairs_kept = $pairs_kept,
			min_threshold = $min_threshold,
			started_at = <datetime>$started_at
	`, map[string]any{
		"run_id":          run.RunID,
		"source_platform": string(run.SourcePlatform),
		"target_platform": string(run.TargetPlatform),
		"pairs_scored":    run.PairsScored,
		"pairs_kept":      run.PairsKept,
		"min_threshold":   run.MinThreshold,
		"started_at":      run.StartedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("record detection run: %w", wrapQueryError(err))
	}
	return nil
}

// QueryListDuplicates returns persisted duplicate candidates ordered by
// score descending. Pass a confidence to restrict to one tier.
func (c *Client) QueryListDuplicates(
	ctx context.Context,
	confidence *models.Confidence,
	limit int,
) ([]SimilarityEdge, error) {
	confidenceClause := ""
	if confidence != nil {
		confidenceClause = "WHERE confidence = $confidence"
	}

	sql := fmt.Sprintf(`
		SELECT
			in.name AS source_table,
			out.name AS target_table,
			in.platform AS source_platform,
			out.platform AS target_platform,
			total_score, semantic_score, schema_score,
			statistical_score, relationship_score,
			confidence, run_id, detected_at
		FROM similar_to %s
		ORDER BY total_score DESC
		LIMIT $limit
	`, confidenceClause)

	vars := map[string]any{"limit": limit}
	if confidence != nil {
		vars["confidence"] = string(*confidence)
	}

	results, err := surrealdb.Query[[]SimilarityEdge](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list duplicates: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []SimilarityEdge{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryCreateLineageEdge records that derived derives from source.
func (c *Client) QueryCreateLineageEdge(ctx context.Context, derivedID, sourceID string, transformation *string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		RELATE type::record("table_signature", $derived)->derives_from->type::record("table_signature", $source) SET
			transformation = $transformation
	`, map[string]any{
		"derived":        derivedID,
		"source":         sourceID,
		"transformation": transformation,
	})
	if err != nil {
		wrapped := wrapQueryError(err)
		if errors.Is(wrapped, ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create lineage edge: %w", wrapped)
	}
	return nil
}

// QueryCreateReferenceEdge records a foreign-key style link via a column.
func (c *Client) QueryCreateReferenceEdge(ctx context.Context, fromID, toID, viaColumn string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		RELATE type::record("table_signature", $from)->references_entity->type::record("table_signature", $to) SET
			via_column = $via_column
	`, map[string]any{
		"from":       fromID,
		"to":         toID,
		"via_column": viaColumn,
	})
	if err != nil {
		wrapped := wrapQueryError(err)
		if errors.Is(wrapped, ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create reference edge: %w", wrapped)
	}
	return nil
}

// QueryLineage returns upstream source names and downstream derived names
// for a table, each up to the given depth.
func (c *Client) QueryLineage(ctx context.Context, tableID string, depth int) (upstream, downstream []string, err error) {
	// Depth must be literal (cannot parameterize)
	sql := fmt.Sprintf(`
		SELECT
			array::distinct(->derives_from..%d->table_signature.name) AS upstream,
			array::distinct(<-derives_from..%d<-table_signature.name) AS downstream
		FROM type::record("table_signature", $id)
	`, depth, depth)

	type lineage struct {
		Upstream   []string `json:"upstream"`
		Downstream []string `json:"downstream"`
	}
	results, qerr := surrealdb.Query[[]lineage](ctx, c.db, sql, map[string]any{"id": tableID})
	if qerr != nil {
		return nil, nil, fmt.Errorf("lineage: %w", qerr)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil, nil
	}
	l := (*results)[0].Result[0]
	return l.Upstream, l.Downstream, nil
}

// QueryRelatedTables returns tables connected by reference edges in either
// direction.
func (c *Client) QueryRelatedTables(ctx context.Context, tableID string) ([]string, error) {
	type related struct {
		Related []string `json:"related"`
	}
	results, err := surrealdb.Query[[]related](ctx, c.db, `
		SELECT array::distinct(array::concat(
			->references_entity->table_signature.name,
			<-references_entity<-table_signature.name
		)) AS related
		FROM type::record("table_signature", $id)
	`, map[string]any{"id": tableID})
	if err != nil {
		return nil, fmt.Errorf("related tables: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return []string{}, nil
	}
	return (*results)[0].Result[0].Related, nil
}

// QueryTablesByRowCount returns tables matching a row-count constraint,
// largest first. Pass a platform to restrict to one source.
func (c *Client) QueryTablesByRowCount(
	ctx context.Context,
	threshold routing.RowThreshold,
	platform *models.Platform,
	limit int,
) ([]TableRecord, error) {
	op, ok := map[routing.ThresholdOp]string{
		routing.OpGT:  ">",
		routing.OpGTE: ">=",
		routing.OpLT:  "<",
		routing.OpLTE: "<=",
	}[threshold.Op]
	if !ok {
		return nil, fmt.Errorf("unknown threshold operator: %s", threshold.Op)
	}

	platformClause := ""
	if platform != nil {
		platformClause = "AND platform = $platform"
	}

	sql := fmt.Sprintf(`
		SELECT * FROM table_signature
		WHERE row_count %s $value %s
		ORDER BY row_count DESC
		LIMIT $limit
	`, op, platformClause)

	vars := map[string]any{"value": threshold.Value, "limit": limit}
	if platform != nil {
		vars["platform"] = string(*platform)
	}

	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("tables by row count: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []TableRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryLargestTables returns the biggest tables across all platforms.
func (c *Client) QueryLargestTables(ctx context.Context, limit int) ([]TableRecord, error) {
	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, `
		SELECT * FROM table_signature ORDER BY row_count DESC LIMIT $limit
	`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("largest tables: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []TableRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryTablesInSchema returns tables registered under a schema name.
func (c *Client) QueryTablesInSchema(ctx context.Context, schema string) ([]TableRecord, error) {
	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, `
		SELECT * FROM table_signature WHERE schema_name = $schema ORDER BY name ASC
	`, map[string]any{"schema": schema})
	if err != nil {
		return nil, fmt.Errorf("tables in schema: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []TableRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QuerySensitiveTables returns tables flagged as containing PII.
func (c *Client) QuerySensitiveTables(ctx context.Context) ([]TableRecord, error) {
	results, err := surrealdb.Query[[]TableRecord](ctx, c.db, `
		SELECT * FROM table_signature WHERE contains_pii = true ORDER BY name ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("sensitive tables: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []TableRecord{}, nil
	}
	return (*results)[0].Result, nil
}

// QueryCountByPlatform returns table counts grouped by platform.
func (c *Client) QueryCountByPlatform(ctx context.Context) ([]PlatformCount, error) {
	results, err := surrealdb.Query[[]PlatformCount](ctx, c.db, `
		SELECT platform, count() AS count FROM table_signature GROUP BY platform
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("count by platform: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []PlatformCount{}, nil
	}
	return (*results)[0].Result, nil
}
