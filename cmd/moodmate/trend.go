package moodmate

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

var (
	trendJSON     bool
	trendNoCharts bool
	trendDays     int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Mood trend with streaks, rolling averages, and charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if trendDays < 0 {
			return fmt.Errorf("--days must be >= 0")
		}
		return withSession(cmd, func(ctx context.Context, s session) error {
			history, err := s.repo.LoadHistory(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			summary := service.SummarizeMood(history, now.Now())
			if trendJSON {
				return printJSON(cmd, "trend", summary)
			}
			printTrend(cmd.OutOrStdout(), summary, trendDays, trendNoCharts)
			return nil
		})
	},
}

func printTrend(out io.Writer, s service.MoodSummary, days int, noCharts bool) {
	if s.Entries == 0 {
		fmt.Fprintln(out, "No entries yet.")
		return
	}
	fmt.Fprintf(out, "Range: %s to %s\n", s.FromDate, s.ToDate)
	fmt.Fprintf(out, "Entries: %d over %d logged days\n", s.Entries, s.LoggedDays)
	fmt.Fprintf(out, "Average score: %.2f\n", s.AvgScore)
	if s.HighestDay != nil && s.LowestDay != nil {
		fmt.Fprintf(out, "Best day: %s (%.1f)\n", s.HighestDay.Date, s.HighestDay.Score)
		fmt.Fprintf(out, "Lowest day: %s (%.1f)\n", s.LowestDay.Date, s.LowestDay.Score)
	}
	fmt.Fprintf(out, "Trend: %s (%+.3f/day)\n", s.Trend.Direction, s.Trend.SlopePerDay)
	fmt.Fprintf(out, "Logging streak: current=%d longest=%d\n", s.LoggingStreak.Current, s.LoggingStreak.Longest)
	if n := len(s.Rolling7); n > 0 {
		p := s.Rolling7[n-1]
		fmt.Fprintf(out, "7-day average (%s): %.2f from %d days\n", p.Date, p.AvgScore, p.Samples)
	} else {
		fmt.Fprintln(out, "7-day average: n/a")
	}

	fmt.Fprintln(out, "\nMoods")
	for _, m := range moodOrder(s) {
		fmt.Fprintf(out, "%s: %d\n", m, s.MoodCounts[model.Mood(m)])
	}

	if noCharts {
		return
	}
	series := s.Days
	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}
	fmt.Fprintln(out, "\nDaily scores")
	printDayBars(out, series)
	fmt.Fprintf(out, "Sparkline %s\n", sparkline(dayScores(series)))
}

func moodOrder(s service.MoodSummary) []string {
	out := make([]string, 0, len(s.MoodCounts))
	for m := range s.MoodCounts {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

func printDayBars(out io.Writer, days []service.DayMood) {
	for _, d := range days {
		if !d.Logged {
			fmt.Fprintf(out, "  %-10s %s\n", d.Date, muted("(no entry)"))
			continue
		}
		fmt.Fprintf(out, "  %-10s %-20s %.1f %s\n", d.Date, horizontalBar(d.Score, 10, 20), d.Score, d.Mood)
	}
}

func dayScores(days []service.DayMood) []float64 {
	values := make([]float64, 0, len(days))
	for _, d := range days {
		values = append(values, d.Score)
	}
	return values
}

func horizontalBar(value, maxValue float64, width int) string {
	if width <= 0 || maxValue <= 0 {
		return ""
	}
	bars := int(math.Round((math.Abs(value) / maxValue) * float64(width)))
	if bars == 0 && value != 0 {
		bars = 1
	}
	if bars > width {
		bars = width
	}
	return strings.Repeat("#", bars)
}

// sparkline scales values onto a fixed score range so charts from different
// periods are comparable. Days without entries are drawn as blanks.
func sparkline(values []float64) string {
	chars := []rune("._-~=*#@")
	var b strings.Builder
	for _, v := range values {
		if v <= 0 {
			b.WriteRune(' ')
			continue
		}
		ratio := (v - 1) / 9
		idx := int(math.Round(ratio * float64(len(chars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}

var (
	calendarYear int
	calendarJSON bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Yearly mood heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		year := calendarYear
		if year == 0 {
			year = now.Now().Year()
		}
		return withSession(cmd, func(ctx context.Context, s session) error {
			history, err := s.repo.LoadHistory(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			values := service.CalendarValues(history, year)
			if calendarJSON {
				return printJSON(cmd, "calendar", values)
			}
			printCalendar(cmd.OutOrStdout(), year, values)
			return nil
		})
	},
}

func printCalendar(out io.Writer, year int, values []service.CalendarDay) {
	byDay := make(map[string]int, len(values))
	for _, v := range values {
		byDay[v.Day] = v.Value
	}
	fmt.Fprintf(out, "%s %s\n", heading(fmt.Sprintf("%d", year)), muted(fmt.Sprintf("%d days logged", len(values))))
	for month := 1; month <= 12; month++ {
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		var b strings.Builder
		for d := first; int(d.Month()) == month; d = d.AddDate(0, 0, 1) {
			score, ok := byDay[d.Format("2006-01-02")]
			if !ok {
				b.WriteRune('.')
				continue
			}
			b.WriteString(heatCell(score))
		}
		fmt.Fprintf(out, "%s %s\n", first.Format("Jan"), b.String())
	}
	fmt.Fprintln(out, muted("scores: 1-3 low, 4-6 mid, 7-10 high; . = no entry"))
}

func heatCell(score int) string {
	switch {
	case score >= 7:
		return "#"
	case score >= 4:
		return "+"
	default:
		return "-"
	}
}


func init() {
	rootCmd.AddCommand(trendCmd, calendarCmd)
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "Output as JSON")
	trendCmd.Flags().BoolVar(&trendNoCharts, "no-charts", false, "Disable ASCII charts in text output")
	trendCmd.Flags().IntVar(&trendDays, "days", 30, "Days to chart (0 = whole history)")
	calendarCmd.Flags().IntVar(&calendarYear, "year", 0, "Calendar year (default current year)")
	calendarCmd.Flags().BoolVar(&calendarJSON, "json", false, "Output as JSON")
}
