package moodmate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Log and browse daily check-ins",
}

// checkInOptions holds the flags shared by `score` and `entry add`.
type checkInOptions struct {
	date       string
	mood       string
	sleep      float64
	activities []string
	stress     int
	energy     int
	weather    string
	health     []string
	notes      string
}

var checkInFlags = &checkInOptions{}

func (o *checkInOptions) register(c *cobra.Command) {
	c.Flags().StringVar(&o.mood, "mood", "", "Mood: happy|sad|anxious|angry|neutral")
	c.Flags().Float64Var(&o.sleep, "sleep", 0, "Hours slept (0-24)")
	c.Flags().StringSliceVar(&o.activities, "activities", nil, "Comma-separated activities (exercise,meditation,socializing,hobby,nature,work,study,rest)")
	c.Flags().IntVar(&o.stress, "stress", 0, "Stress level 1-10 (default 5)")
	c.Flags().IntVar(&o.energy, "energy", 0, "Energy level 1-10 (default 5)")
	c.Flags().StringVar(&o.weather, "weather", "", "Weather: sunny|cloudy|rainy|snowy|stormy")
	c.Flags().StringSliceVar(&o.health, "health", nil, "Comma-separated physical health tags (headache,fatigue,nausea,pain,healthy)")
	c.Flags().StringVar(&o.date, "date", "", "Entry date YYYY-MM-DD (default today)")
	c.Flags().StringVar(&o.notes, "notes", "", "Free-form notes")
	_ = c.MarkFlagRequired("mood")
}

func (o *checkInOptions) input(userID string) service.CreateEntryInput {
	return service.CreateEntryInput{
		UserID:         userID,
		Date:           o.date,
		Mood:           o.mood,
		SleepHours:     o.sleep,
		Activities:     o.activities,
		StressLevel:    o.stress,
		EnergyLevel:    o.energy,
		Weather:        o.weather,
		PhysicalHealth: o.health,
		Notes:          o.notes,
	}
}

var entryAddJSON bool

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add today's check-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s session) error {
			e, err := service.CreateEntry(ctx, s.repo, now, checkInFlags.input(s.userID))
			if err != nil {
				return err
			}
			if entryAddJSON {
				return printJSON(cmd, "entry", e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s for %s (score %d/10)\n", shortID(e.ID), e.DateString(), e.MoodScore)
			return nil
		})
	},
}

var (
	listFromDate string
	listToDate   string
	listLimit    int
	listJSON     bool
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List check-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListHistoryFilter{
			FromDate: listFromDate,
			ToDate:   listToDate,
			Limit:    listLimit,
		}
		return withSession(cmd, func(ctx context.Context, s session) error {
			entries, err := service.ListHistory(ctx, s.repo, s.userID, filter)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd, "entries", entries)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tDATE\tTIME\tMOOD\tSCORE\tSLEEP\tSTRESS\tENERGY\tWEATHER\tACTIVITIES")
			for _, e := range entries {
				weather := string(e.Weather)
				if weather == "" {
					weather = "-"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%.1f\t%d\t%d\t%s\t%s\n", shortID(e.ID), e.DateString(), e.RecordedAt.Local().Format("15:04"), e.Mood, e.MoodScore, e.SleepHours, e.StressLevel, e.EnergyLevel, weather, joinActivities(e.Activities))
			}
			return nil
		})
	},
}

var entryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single check-in (full id or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s session) error {
			e, err := service.FindEntry(ctx, s.repo, s.userID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", e.ID)
			fmt.Fprintf(out, "User: %s\n", e.UserID)
			fmt.Fprintf(out, "Date: %s\n", e.DateString())
			fmt.Fprintf(out, "Recorded: %s\n", e.RecordedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "Mood: %s\n", e.Mood)
			fmt.Fprintf(out, "Score: %d/10\n", e.MoodScore)
			fmt.Fprintf(out, "Sleep: %.1fh\n", e.SleepHours)
			fmt.Fprintf(out, "Stress: %d\nEnergy: %d\n", e.StressLevel, e.EnergyLevel)
			if e.Weather != "" {
				fmt.Fprintf(out, "Weather: %s\n", e.Weather)
			}
			fmt.Fprintf(out, "Activities: %s\n", joinActivities(e.Activities))
			fmt.Fprintf(out, "Physical health: %s\n", joinHealth(e.PhysicalHealth))
			if strings.TrimSpace(e.Notes) != "" {
				fmt.Fprintf(out, "Notes: %s\n", e.Notes)
			}
			return nil
		})
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryShowCmd)

	checkInFlags.register(entryAddCmd)
	entryAddCmd.Flags().BoolVar(&entryAddJSON, "json", false, "Output the stored entry as JSON")

	entryListCmd.Flags().StringVar(&listFromDate, "from", "", "Start date YYYY-MM-DD")
	entryListCmd.Flags().StringVar(&listToDate, "to", "", "End date YYYY-MM-DD")
	entryListCmd.Flags().IntVar(&listLimit, "limit", 0, "Show only the newest N entries (0 = all)")
	entryListCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}
