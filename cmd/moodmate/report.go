package moodmate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

type moodReport struct {
	User     string              `json:"user"`
	Summary  service.MoodSummary `json:"summary"`
	Insights []model.Insight     `json:"insights"`
	Patterns []model.Insight     `json:"patterns"`
}

var (
	reportOutPath   string
	reportOutFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a mood report (trend, insights, patterns) to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(reportOutPath) == "" {
			return fmt.Errorf("--out is required")
		}
		return withSession(cmd, func(ctx context.Context, s session) error {
			history, err := s.repo.LoadHistory(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			hemisphere, err := resolveHemisphere(s.db)
			if err != nil {
				return err
			}
			opts := service.DefaultAdvancedOptions()
			opts.Hemisphere = hemisphere
			r := moodReport{
				User:     s.userID,
				Summary:  service.SummarizeMood(history, now.Now()),
				Insights: service.DeriveInsights(history),
				Patterns: service.DeriveAdvancedInsights(history, opts),
			}
			data, err := renderReport(r, reportOutFormat)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportOutPath, data, 0o644); err != nil {
				return fmt.Errorf("write report to %q: %w", reportOutPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved mood report to %s\n", reportOutPath)
			return nil
		})
	},
}

func renderReport(r moodReport, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		var b bytes.Buffer
		fmt.Fprintf(&b, "Mood report for %s\n\n", r.User)
		printTrend(&b, r.Summary, 0, true)
		fmt.Fprintln(&b)
		printPlainInsights(&b, "Recent insights", r.Insights)
		fmt.Fprintln(&b)
		printPlainInsights(&b, "Patterns", r.Patterns)
		return b.Bytes(), nil
	case "markdown", "md":
		return []byte(renderReportMarkdown(r)), nil
	case "json":
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report json: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("invalid --out-format value %q (use text|markdown|json)", format)
	}
}

func printPlainInsights(out io.Writer, title string, insights []model.Insight) {
	fmt.Fprintln(out, title)
	if len(insights) == 0 {
		fmt.Fprintln(out, "  nothing stands out yet")
		return
	}
	for _, in := range insights {
		fmt.Fprintf(out, "  [%s/%s] %s\n", in.Priority, in.Type, in.Message)
	}
}

func renderReportMarkdown(r moodReport) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "# Mood Report\n\n")
	fmt.Fprintf(&b, "- User: `%s`\n", r.User)
	if s.Entries == 0 {
		fmt.Fprintf(&b, "- No entries yet\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Range: `%s` to `%s`\n", s.FromDate, s.ToDate)
	fmt.Fprintf(&b, "- Entries: %d over %d logged days\n", s.Entries, s.LoggedDays)
	fmt.Fprintf(&b, "- Average score: %.2f\n", s.AvgScore)
	fmt.Fprintf(&b, "- Trend: %s (%+.3f/day)\n", s.Trend.Direction, s.Trend.SlopePerDay)
	fmt.Fprintf(&b, "- Logging streak: current=%d, longest=%d\n\n", s.LoggingStreak.Current, s.LoggingStreak.Longest)

	writeMarkdownInsights(&b, "Recent Insights", r.Insights)
	writeMarkdownInsights(&b, "Patterns", r.Patterns)
	return b.String()
}

func writeMarkdownInsights(b *strings.Builder, title string, insights []model.Insight) {
	fmt.Fprintf(b, "## %s\n", title)
	if len(insights) == 0 {
		fmt.Fprintf(b, "- Nothing stands out yet\n\n")
		return
	}
	for _, in := range insights {
		fmt.Fprintf(b, "- **%s** (%s): %s\n", in.Priority, in.Type, in.Message)
	}
	fmt.Fprintln(b)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportOutPath, "out", "", "Report file path")
	reportCmd.Flags().StringVar(&reportOutFormat, "out-format", "text", "Report file format: text|markdown|json")
}
