// Package cli provides the command-line interface for nexus.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/config"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/db"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/llm"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/metrics"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/ranking"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	profile string

	// Global config, profiles, and db client
	cfg       config.Config
	profiles  config.Profiles
	dbClient  *db.Client
	collector = metrics.NewCollector()
	closeLog  func() error

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Multi-source data catalog assistant",
	Long: `Nexus is a data-catalog assistant for Snowflake and Databricks metadata.

It registers table signatures in a metadata graph, answers natural-language
questions about the catalog with hybrid semantic/structural retrieval, and
detects duplicate tables across platforms.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		logger, closer := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		closeLog = closer

		var err error
		profiles, err = config.LoadProfiles(cfg.ProfilesFile)
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// getEmbedder lazily initializes the embedding client. Commands that never
// touch vectors skip the provider handshake entirely.
func getEmbedder() (*llm.Embedder, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return embedder, nil
}

// getModel lazily initializes the generation model.
func getModel() (*llm.Model, error) {
	if model == nil {
		var err error
		model, err = llm.NewModel(cfg, collector)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}
	return model, nil
}

// getQueryService builds the query service with the selected ranking
// profile. synthesize controls whether the generation model is loaded.
func getQueryService(synthesize bool) (*service.QueryService, error) {
	emb, err := getEmbedder()
	if err != nil {
		return nil, err
	}

	var mdl *llm.Model
	if synthesize {
		mdl, err = getModel()
		if err != nil {
			return nil, err
		}
	}

	ranker, err := ranking.NewRanker(profiles.RankingWeights(profile), profiles.MaxCentrality)
	if err != nil {
		return nil, fmt.Errorf("build ranker: %w", err)
	}

	return service.NewQueryService(dbClient, emb, mdl, nil, ranker, collector, nil), nil
}

// getDetectionService builds the duplicate-detection service.
func getDetectionService() (*service.DetectionService, error) {
	emb, err := getEmbedder()
	if err != nil {
		return nil, err
	}
	return service.NewDetectionService(dbClient, emb, profiles.ScorerConfig(), collector, nil), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "default", "ranking weight profile")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
