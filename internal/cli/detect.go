package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

var (
	detectSource    string
	detectTarget    string
	detectThreshold float64
	detectPersist   bool
	detectTop       int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect duplicate tables across platforms",
	Long: `Sweep every source/target table pair, score schema similarity, and
report likely duplicates grouped by confidence.

Examples:
  nexus detect
  nexus detect --threshold 0.5 --persist
  nexus detect --source snowflake --target databricks --top 20`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectSource, "source", string(models.PlatformSnowflake), "source platform")
	detectCmd.Flags().StringVar(&detectTarget, "target", string(models.PlatformDatabricks), "target platform")
	detectCmd.Flags().Float64Var(&detectThreshold, "threshold", 0, "minimum score to report (0 = configured default)")
	detectCmd.Flags().BoolVar(&detectPersist, "persist", false, "persist findings as catalog edges")
	detectCmd.Flags().IntVar(&detectTop, "top", 10, "matches to display")
}

func runDetect(cmd *cobra.Command, args []string) error {
	source, err := parsePlatform(detectSource)
	if err != nil {
		return err
	}
	target, err := parsePlatform(detectTarget)
	if err != nil {
		return err
	}
	if source == target {
		return fmt.Errorf("source and target platforms must differ")
	}

	svc, err := getDetectionService()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var report *service.Report
	if term.IsTerminal(int(os.Stdout.Fd())) {
		report, err = RunSweepProgress(cancel, func(onProgress func(done, total int)) (*service.Report, error) {
			return svc.Run(ctx, source, target, service.RunOptions{
				MinThreshold: detectThreshold,
				Persist:      detectPersist,
				OnProgress:   onProgress,
			})
		})
	} else {
		report, err = svc.Run(ctx, source, target, service.RunOptions{
			MinThreshold: detectThreshold,
			Persist:      detectPersist,
		})
	}
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if report == nil {
		return nil
	}

	fmt.Println(renderReport(report, detectTop))
	return nil
}

func parsePlatform(s string) (models.Platform, error) {
	switch models.Platform(s) {
	case models.PlatformSnowflake:
		return models.PlatformSnowflake, nil
	case models.PlatformDatabricks:
		return models.PlatformDatabricks, nil
	default:
		return "", fmt.Errorf("unknown platform %q (want snowflake or databricks)", s)
	}
}
