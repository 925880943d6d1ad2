// Package models defines the core data types for the Nexus catalog engine.
package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Platform identifies the source system a table was extracted from.
type Platform string

const (
	PlatformSnowflake  Platform = "snowflake"
	PlatformDatabricks Platform = "databricks"
)

// Column describes one column of an extracted table.
type Column struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Ordinal int    `json:"ordinal"`
}

// TableSignature is the metadata fingerprint of one table on one platform.
// TypeSignature and NameSignature are derived from Columns by the
// constructor; build one per extraction pass and treat it as immutable.
type TableSignature struct {
	TableID         string    `json:"table_id"`
	Source          Platform  `json:"source"`
	Schema          string    `json:"schema"`
	Name            string    `json:"name"`
	RowCount        int64     `json:"row_count"`
	ColumnCount     int       `json:"column_count"`
	Columns         []Column  `json:"columns"`
	ColumnEmbedding []float32 `json:"column_embedding,omitempty"`
	TypeSignature   string    `json:"type_signature"`
	NameSignature   string    `json:"name_signature"`
}

// NewTableSignature builds a signature with derived type and name signatures.
// ColumnCount falls back to len(columns) when the extractor reported zero.
func NewTableSignature(tableID string, source Platform, schema, name string, rowCount int64, columnCount int, columns []Column) TableSignature {
	if columnCount == 0 {
		columnCount = len(columns)
	}
	return TableSignature{
		TableID:       tableID,
		Source:        source,
		Schema:        schema,
		Name:          name,
		RowCount:      rowCount,
		ColumnCount:   columnCount,
		Columns:       columns,
		TypeSignature: TypeSignatureOf(columns),
		NameSignature: NameSignatureOf(columns),
	}
}

// ColumnText returns the space-joined bag of column names, the text the
// table-level embedding is built from. Empty when the table has no columns.
func (s TableSignature) ColumnText() string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, " ")
}

// Snapshot is the immutable result of one extraction pass over a platform.
// Re-extraction produces a new snapshot; nothing mutates an existing one.
type Snapshot struct {
	Platform    Platform         `json:"platform"`
	ExtractedAt time.Time        `json:"extracted_at"`
	Tables      []TableSignature `json:"tables"`
}

// typeFamilies maps platform-specific type names to one of four families.
// Unmapped types pass through uppercased.
var typeFamilies = map[string]string{
	"TEXT": "STRING", "VARCHAR": "STRING", "CHAR": "STRING",
	"STRING": "STRING", "NVARCHAR": "STRING",
	"NUMBER": "NUMERIC", "INT": "NUMERIC", "INTEGER": "NUMERIC",
	"FLOAT": "NUMERIC", "DOUBLE": "NUMERIC", "DECIMAL": "NUMERIC",
	"BIGINT": "NUMERIC", "SMALLINT": "NUMERIC", "LONG": "NUMERIC",
	"DATE": "DATETIME", "TIMESTAMP": "DATETIME", "DATETIME": "DATETIME",
	"TIMESTAMP_NTZ": "DATETIME", "TIMESTAMP_LTZ": "DATETIME",
	"BOOLEAN": "BOOLEAN", "BOOL": "BOOLEAN",
}

// NormalizeType maps a raw column type to its cross-platform family.
func NormalizeType(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return "UNKNOWN"
	}
	if family, ok := typeFamilies[upper]; ok {
		return family
	}
	return upper
}

// ParseSnowflakeType unwraps Snowflake's JSON-wrapped data_type values
// (e.g. {"type":"TEXT","length":255}) to the bare type name.
func ParseSnowflakeType(raw string) string {
	if raw == "" {
		return "UNKNOWN"
	}
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Type != "" {
			return strings.ToUpper(wrapped.Type)
		}
	}
	return strings.ToUpper(raw)
}

// TypeSignatureOf returns the sorted comma-joined normalized type tokens.
func TypeSignatureOf(columns []Column) string {
	types := make([]string, 0, len(columns))
	for _, c := range columns {
		types = append(types, NormalizeType(c.Type))
	}
	sort.Strings(types)
	return strings.Join(types, ",")
}

// NameSignatureOf returns the sorted comma-joined normalized column names.
// Names are lower-cased with underscores stripped so CUSTOMER_ID and
// customerid compare equal across platforms.
func NameSignatureOf(columns []Column) string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, NormalizeColumnName(c.Name))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// NormalizeColumnName lower-cases a column name and strips underscores.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// SignatureTokens splits a derived signature into its set of non-empty
// tokens. An empty signature yields an empty set, not a set containing "".
func SignatureTokens(signature string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range strings.Split(signature, ",") {
		if t != "" {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

// FKEntities extracts the inferred foreign-key entity set from columns:
// the prefix of every name ending in _id or _key. Columns without an
// FK-style suffix are ignored.
func FKEntities(columns []Column) map[string]struct{} {
	entities := make(map[string]struct{})
	for _, c := range columns {
		name := strings.ToLower(c.Name)
		if strings.HasSuffix(name, "_id") || strings.HasSuffix(name, "_key") {
			if idx := strings.LastIndex(name, "_"); idx > 0 {
				entities[name[:idx]] = struct{}{}
			}
		}
	}
	return entities
}
