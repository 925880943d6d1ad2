package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all catalog data",
	Long: `Delete every table signature, relationship edge, duplicate finding,
and detection run from the catalog. The schema stays in place, so the next
register starts from a clean store.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("This deletes all catalog data. Type 'yes' to continue: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := dbClient.WipeData(context.Background()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Println("Catalog data deleted.")
	return nil
}
