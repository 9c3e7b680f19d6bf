package moodmate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

var scoreJSON bool

type scoreResult struct {
	Mood        model.Mood `json:"mood"`
	SleepHours  float64    `json:"sleep_hours"`
	StressLevel int        `json:"stress_level"`
	EnergyLevel int        `json:"energy_level"`
	MoodScore   int        `json:"mood_score"`
}

// scoreCmd scores a check-in without storing it.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a mood score without saving an entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := checkInFlags.input("preview")
		e, err := service.NewEntry(now, in)
		if err != nil {
			return err
		}
		if scoreJSON {
			return printJSON(cmd, "score", scoreResult{
				Mood:        e.Mood,
				SleepHours:  e.SleepHours,
				StressLevel: e.StressLevel,
				EnergyLevel: e.EnergyLevel,
				MoodScore:   e.MoodScore,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mood score: %d/10\n", e.MoodScore)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	checkInFlags.register(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Output as JSON")
}
