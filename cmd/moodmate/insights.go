package moodmate

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

var (
	insightsAdvanced bool
	insightsJSON     bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Explain what has been affecting your mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s session) error {
			history, err := s.repo.LoadHistory(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			basic := service.DeriveInsights(history)
			var advanced []model.Insight
			if insightsAdvanced {
				hemisphere, err := resolveHemisphere(s.db)
				if err != nil {
					return err
				}
				opts := service.DefaultAdvancedOptions()
				opts.Hemisphere = hemisphere
				advanced = service.DeriveAdvancedInsights(history, opts)
			}

			if insightsJSON {
				payload := map[string]any{"user": s.userID, "entries": len(history), "insights": basic}
				if insightsAdvanced {
					payload["advanced"] = advanced
				}
				return printJSON(cmd, "insights", payload)
			}

			out := cmd.OutOrStdout()
			if len(history) == 0 {
				fmt.Fprintln(out, "No entries yet. Add one with `moodmate entry add`.")
				return nil
			}
			printInsights(out, "Recent insights", basic)
			if insightsAdvanced {
				fmt.Fprintln(out)
				printInsights(out, "Patterns", advanced)
			}
			return nil
		})
	},
}

func printInsights(out io.Writer, title string, insights []model.Insight) {
	fmt.Fprintln(out, heading(title))
	if len(insights) == 0 {
		fmt.Fprintln(out, muted("  nothing stands out yet"))
		return
	}
	for _, in := range insights {
		fmt.Fprintf(out, "  %s %s %s\n", priorityBadge(in.Priority), muted("["+string(in.Type)+"]"), in.Message)
	}
}

var (
	tipsSeed int64
	tipsJSON bool
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Suggestions based on your latest check-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s session) error {
			history, err := s.repo.LoadHistory(ctx, s.userID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(history) == 0 {
				return fmt.Errorf("no entries for %q yet; add one with `moodmate entry add`", s.userID)
			}
			picker, seed, err := resolvePicker(cmd, s.db, tipsSeed)
			if err != nil {
				return err
			}
			latest := service.LatestEntry(history)
			tips := service.BuildTips(service.TipsInputFromEntry(latest), picker)
			if tipsJSON {
				return printJSON(cmd, "tips", map[string]any{"entry_id": latest.ID, "seed": seed, "tips": tips})
			}
			printTips(cmd.OutOrStdout(), latest, tips)
			return nil
		})
	},
}

func printTips(out io.Writer, e model.Entry, tips service.Tips) {
	fmt.Fprintf(out, "%s %s\n", heading("Tips for"), muted(fmt.Sprintf("%s (%s, score %d/10)", e.DateString(), e.Mood, e.MoodScore)))
	printTipList(out, "Mood", tips.Mood)
	printTipList(out, "Weather", tips.Weather)
	if tips.EnergyBand != "" {
		printTipList(out, "Energy ("+tips.EnergyBand+")", tips.Energy)
	}
	printLabeledTips(out, "Physical health", tips.Health)
	printLabeledTips(out, "Build on today", tips.ActivityFollowUps)
	printLabeledTips(out, "Try adding", tips.MissingActivities)
}

func printTipList(out io.Writer, title string, tips []string) {
	if len(tips) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", heading(title))
	for _, t := range tips {
		fmt.Fprintf(out, "  - %s\n", t)
	}
}

func printLabeledTips(out io.Writer, title string, tips []service.LabeledTip) {
	if len(tips) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", heading(title))
	for _, t := range tips {
		fmt.Fprintf(out, "  - %s: %s\n", t.Label, t.Text)
	}
}

func init() {
	rootCmd.AddCommand(insightsCmd, tipsCmd)
	insightsCmd.Flags().BoolVar(&insightsAdvanced, "advanced", false, "Include long-range patterns (time of day, weekday, season, activity pairs)")
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "Output as JSON")
	tipsCmd.Flags().Int64Var(&tipsSeed, "seed", 0, "Seed for reproducible suggestions")
	tipsCmd.Flags().BoolVar(&tipsJSON, "json", false, "Output as JSON")
}
