package moodmate

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks on stored entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invalid scores: %d\n", report.InvalidScores)
			fmt.Fprintf(out, "Unknown mood/weather values: %d\n", report.UnknownValues)
			fmt.Fprintf(out, "Invalid tag rows: %d\n", report.InvalidTagRows)
			fmt.Fprintf(out, "Days with several entries: %d\n", report.SameDayEntries)
			if doctorFix {
				fmt.Fprintf(out, "Fixed tag rows: %d\n", report.FixedTagRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
