// Package service wires the catalog store, embedder, and scoring engines
// into the operations exposed by the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/llm"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// piiMarkers flags column names that commonly carry personal data. Matching
// is substring-based on the lowercased name.
var piiMarkers = []string{
	"email", "ssn", "social_security", "phone", "birth", "dob",
	"address", "first_name", "last_name", "full_name", "passport",
	"credit_card", "iban", "tax_id",
}

// CatalogService registers extraction snapshots in the metadata store.
type CatalogService struct {
	db       *db.Client
	embedder *llm.Embedder
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewCatalogService creates a catalog registration service.
func NewCatalogService(database *db.Client, embedder *llm.Embedder, collector *metrics.Collector, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{db: database, embedder: embedder, metrics: collector, logger: logger}
}

// RegisterSnapshot persists every signature in a snapshot: embeds the
// column-name bag of each table, flags PII columns, and infers reference
// edges from foreign-key style columns that name another table in the
// snapshot. Returns the number of tables registered.
func (s *CatalogService) RegisterSnapshot(ctx context.Context, snapshot models.Snapshot) (int, error) {
	if len(snapshot.Tables) == 0 {
		return 0, fmt.Errorf("snapshot for %s has no tables", snapshot.Platform)
	}

	s.logger.Info("registering snapshot",
		"platform", snapshot.Platform, "tables", len(snapshot.Tables))

	texts := make([]string, len(snapshot.Tables))
	for i, sig := range snapshot.Tables {
		texts[i] = sig.ColumnText()
	}

	start := time.Now()
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed snapshot: %w", err)
	}
	s.metrics.RecordTiming(metrics.OpEmbedding, time.Since(start))

	registered := 0
	for i, sig := range snapshot.Tables {
		sig.ColumnEmbedding = embeddings[i]
		containsPII, level := classifySensitivity(sig.Columns)

		start = time.Now()
		if err := s.db.QueryUpsertTableSignature(ctx, sig, containsPII, level); err != nil {
			return registered, fmt.Errorf("register %s: %w", sig.Name, err)
		}
		s.metrics.RecordTiming(metrics.OpDBQuery, time.Since(start))
		registered++
	}

	if err := s.linkReferences(ctx, snapshot); err != nil {
		return registered, err
	}

	s.logger.Info("snapshot registered", "platform", snapshot.Platform, "tables", registered)
	return registered, nil
}

// linkReferences creates reference edges for FK-style columns whose entity
// prefix matches another table name in the snapshot (CUSTOMER_ID on ORDERS
// links ORDERS to CUSTOMERS).
func (s *CatalogService) linkReferences(ctx context.Context, snapshot models.Snapshot) error {
	byNormName := make(map[string]models.TableSignature, len(snapshot.Tables))
	for _, sig := range snapshot.Tables {
		byNormName[normalizeTableName(sig.Name)] = sig
	}

	for _, sig := range snapshot.Tables {
		for _, col := range sig.Columns {
			entity, ok := fkEntity(col.Name)
			if !ok {
				continue
			}
			// FK prefixes are singular; table names are usually plural
			for _, candidate := range []string{entity, entity + "s", entity + "es"} {
				target, found := byNormName[candidate]
				if !found || target.Name == sig.Name {
					continue
				}
				err := s.db.QueryCreateReferenceEdge(ctx,
					db.TableKey(sig.Source, sig.Name),
					db.TableKey(target.Source, target.Name),
					strings.ToLower(col.Name))
				if err != nil {
					return fmt.Errorf("link %s -> %s: %w", sig.Name, target.Name, err)
				}
				break
			}
		}
	}
	return nil
}

// classifySensitivity flags a table when any column name matches a PII
// marker. Level is "restricted" for identity numbers, "confidential"
// otherwise.
func classifySensitivity(columns []models.Column) (bool, *string) {
	level := ""
	for _, col := range columns {
		name := strings.ToLower(col.Name)
		for _, marker := range piiMarkers {
			if !strings.Contains(name, marker) {
				continue
			}
			switch marker {
			case "ssn", "social_security", "passport", "credit_card", "iban", "tax_id":
				restricted := "restricted"
				return true, &restricted
			default:
				level = "confidential"
			}
		}
	}
	if level == "" {
		return false, nil
	}
	return true, &level
}

// fkEntity returns the entity prefix of an FK-style column name, lowercased
// with the _id/_key suffix removed.
func fkEntity(columnName string) (string, bool) {
	name := strings.ToLower(columnName)
	if !strings.HasSuffix(name, "_id") && !strings.HasSuffix(name, "_key") {
		return "", false
	}
	idx := strings.LastIndex(name, "_")
	if idx <= 0 {
		return "", false
	}
	return name[:idx], true
}

func normalizeTableName(name string) string {
	return strings.ToLower(name)
}
