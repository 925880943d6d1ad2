package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var linkTransformation string

var linkCmd = &cobra.Command{
	Use:   "link <derived> <source>",
	Short: "Record that one table derives from another",
	Long: `Create a lineage edge in the catalog. Tables are addressed as
platform:NAME.

Examples:
  nexus link snowflake:CUSTOMER_SUMMARY snowflake:CUSTOMERS
  nexus link databricks:orders_gold snowflake:ORDERS --transformation "nightly sync"`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVar(&linkTransformation, "transformation", "", "describe the transformation")
}

func runLink(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	derivedID, err := parseTableRef(args[0])
	if err != nil {
		return err
	}
	sourceID, err := parseTableRef(args[1])
	if err != nil {
		return err
	}

	var transformation *string
	if linkTransformation != "" {
		transformation = &linkTransformation
	}

	if err := dbClient.QueryCreateLineageEdge(ctx, derivedID, sourceID, transformation); err != nil {
		return fmt.Errorf("link: %w", err)
	}

	fmt.Printf("Linked: %s derives from %s\n", derivedID, sourceID)
	return nil
}

// parseTableRef validates a platform:NAME reference and returns the record
// key.
func parseTableRef(ref string) (string, error) {
	platform, name, ok := strings.Cut(ref, ":")
	if !ok || name == "" {
		return "", fmt.Errorf("invalid table reference %q (want platform:NAME)", ref)
	}
	if _, err := parsePlatform(platform); err != nil {
		return "", err
	}
	return ref, nil
}
