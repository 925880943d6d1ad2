package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Status)
	reportPairStyle  = lipgloss.NewStyle().Bold(true)
	reportDimStyle   = lipgloss.NewStyle().Foreground(defaultTheme.Hint)
)

// maxColumnMatches bounds how many matched columns show per pair.
const maxColumnMatches = 5

// renderReport renders a detection report: tier summary first, then the top
// matches with their score breakdown and best column matches.
func renderReport(report *service.Report, top int) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render(fmt.Sprintf(
		"Duplicate detection: %s (%d tables) vs %s (%d tables)",
		report.SourcePlatform, report.SourceTables,
		report.TargetPlatform, report.TargetTables)))
	b.WriteString("\n")
	b.WriteString(reportDimStyle.Render(fmt.Sprintf(
		"run %s · %d pairs scored in %s", report.RunID, report.PairsScored, report.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s  %d\n", confidenceLabel(models.ConfidenceHigh), report.HighCount)
	fmt.Fprintf(&b, "  %s  %d\n", confidenceLabel(models.ConfidenceMedium), report.MediumCount)
	fmt.Fprintf(&b, "  %s  %d\n", confidenceLabel(models.ConfidenceLow), report.LowCount)

	if report.Persisted > 0 {
		fmt.Fprintf(&b, "\n%d edges persisted\n", report.Persisted)
	}

	matches := report.Matches
	if len(matches) > top {
		matches = matches[:top]
	}
	for i, m := range matches {
		b.WriteString("\n")
		b.WriteString(reportPairStyle.Render(fmt.Sprintf("%d. %s ⇄ %s", i+1, m.SourceTable, m.TargetTable)))
		fmt.Fprintf(&b, "  %.3f %s\n", m.TotalScore, confidenceLabel(m.Confidence))
		fmt.Fprintf(&b, "   semantic %.2f · schema %.2f · statistical %.2f · relationship %.2f\n",
			m.SemanticScore, m.SchemaScore, m.StatisticalScore, m.RelationshipScore)

		columns := m.MatchingColumns
		if len(columns) > maxColumnMatches {
			columns = columns[:maxColumnMatches]
		}
		for _, c := range columns {
			b.WriteString(reportDimStyle.Render(fmt.Sprintf(
				"   %s -> %s (%.3f)", c.SourceColumn, c.TargetColumn, c.Similarity)))
			b.WriteString("\n")
		}
	}
	if len(report.Matches) > top {
		b.WriteString(reportDimStyle.Render(fmt.Sprintf("\n... and %d more matches\n", len(report.Matches)-top)))
	}

	return b.String()
}

func confidenceLabel(c models.Confidence) string {
	switch c {
	case models.ConfidenceHigh:
		return lipgloss.NewStyle().Foreground(defaultTheme.Success).Render("high  ")
	case models.ConfidenceMedium:
		return lipgloss.NewStyle().Foreground(defaultTheme.Status).Render("medium")
	default:
		return reportDimStyle.Render("low   ")
	}
}
