package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

var registerCmd = &cobra.Command{
	Use:   "register <extraction.json>",
	Short: "Register an extraction snapshot in the catalog",
	Long: `Register the table signatures from a metadata extraction file.

The file holds one platform's extraction pass: table names, schemas, row
counts, and columns. Registration embeds each table's column names, flags
PII columns, and links foreign-key references between tables.

Examples:
  nexus register snowflake-extract.json
  nexus register databricks-extract.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

// extractionFile is the on-disk shape of one extraction pass.
type extractionFile struct {
	Platform models.Platform `json:"platform"`
	Tables   []struct {
		Name     string `json:"name"`
		Schema   string `json:"schema"`
		RowCount int64  `json:"row_count"`
		Columns  []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
	} `json:"tables"`
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	snapshot, err := loadExtraction(args[0])
	if err != nil {
		return err
	}

	emb, err := getEmbedder()
	if err != nil {
		return err
	}

	svc := service.NewCatalogService(dbClient, emb, collector, nil)
	registered, err := svc.RegisterSnapshot(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Registered %d tables from %s.\n", registered, snapshot.Platform)
	return nil
}

func loadExtraction(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read extraction file: %w", err)
	}

	var file extractionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return models.Snapshot{}, fmt.Errorf("parse extraction file: %w", err)
	}
	switch file.Platform {
	case models.PlatformSnowflake, models.PlatformDatabricks:
	default:
		return models.Snapshot{}, fmt.Errorf("unknown platform %q", file.Platform)
	}

	snapshot := models.Snapshot{
		Platform:    file.Platform,
		ExtractedAt: time.Now(),
		Tables:      make([]models.TableSignature, 0, len(file.Tables)),
	}
	for _, t := range file.Tables {
		columns := make([]models.Column, 0, len(t.Columns))
		for i, c := range t.Columns {
			colType := c.Type
			if file.Platform == models.PlatformSnowflake {
				// Snowflake exports wrap types in JSON objects
				colType = models.ParseSnowflakeType(c.Type)
			}
			columns = append(columns, models.Column{
				Name:    c.Name,
				Type:    colType,
				Ordinal: i + 1,
			})
		}
		snapshot.Tables = append(snapshot.Tables, models.NewTableSignature(
			db.TableKey(file.Platform, t.Name),
			file.Platform, t.Schema, t.Name,
			t.RowCount, len(columns), columns,
		))
	}
	return snapshot, nil
}
