package moodmate

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Manage daily check-in reminders",
}

var (
	reminderEnable     bool
	reminderDisable    bool
	reminderTime       string
	reminderFrequency  string
	reminderWeekdays   []string
	reminderCustomDays []string
	reminderJSON       bool
)

var reminderSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update reminder preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reminderEnable && reminderDisable {
			return fmt.Errorf("--enable and --disable are mutually exclusive")
		}
		return withDB(func(sqldb *sql.DB) error {
			userID, err := resolveUser(sqldb)
			if err != nil {
				return err
			}
			prefs, err := loadReminderPrefs(sqldb, userID)
			if err != nil {
				return err
			}
			updates := 0
			if reminderEnable {
				prefs.Enabled = true
				updates++
			}
			if reminderDisable {
				prefs.Enabled = false
				updates++
			}
			if cmd.Flags().Changed("time") {
				prefs.CheckInTime = reminderTime
				updates++
			}
			if cmd.Flags().Changed("frequency") {
				prefs.Frequency = model.ReminderFrequency(reminderFrequency)
				updates++
			}
			if cmd.Flags().Changed("weekdays") {
				prefs.Weekdays = reminderWeekdays
				updates++
			}
			if cmd.Flags().Changed("custom-days") {
				prefs.CustomDays = reminderCustomDays
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			saved, err := service.SaveReminderPreferences(sqldb, prefs)
			if err != nil {
				return err
			}
			printReminder(cmd.OutOrStdout(), saved)
			return nil
		})
	},
}

var reminderShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show reminder preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			userID, err := resolveUser(sqldb)
			if err != nil {
				return err
			}
			prefs, err := loadReminderPrefs(sqldb, userID)
			if err != nil {
				return err
			}
			if reminderJSON {
				return printJSON(cmd, "reminder", prefs)
			}
			printReminder(cmd.OutOrStdout(), prefs)
			return nil
		})
	},
}

// reminderCheckCmd is meant to be run from cron or a scheduler every minute.
// It exits non-zero only on errors; a due reminder prints the message.
var reminderCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the check-in reminder if one is due now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			userID, err := resolveUser(sqldb)
			if err != nil {
				return err
			}
			prefs, err := loadReminderPrefs(sqldb, userID)
			if err != nil {
				return err
			}
			if service.ReminderDue(prefs, now.Now()) {
				fmt.Fprintln(cmd.OutOrStdout(), service.ReminderMessage)
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), muted("no reminder due"))
			return nil
		})
	},
}

func loadReminderPrefs(sqldb *sql.DB, userID string) (model.ReminderPreferences, error) {
	prefs, err := service.LoadReminderPreferences(sqldb, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return prefs, err
	}
	return prefs, nil
}

func printReminder(out io.Writer, p model.ReminderPreferences) {
	state := "disabled"
	if p.Enabled {
		state = "enabled"
	}
	fmt.Fprintf(out, "User: %s\n", p.UserID)
	fmt.Fprintf(out, "Reminder: %s\n", state)
	fmt.Fprintf(out, "Time: %s\n", p.CheckInTime)
	fmt.Fprintf(out, "Frequency: %s\n", p.Frequency)
	switch p.Frequency {
	case model.FrequencyWeekdays:
		fmt.Fprintf(out, "Weekdays: %s\n", joinOrDash(p.Weekdays))
	case model.FrequencyCustom:
		fmt.Fprintf(out, "Days: %s\n", joinOrDash(p.CustomDays))
	}
}

func init() {
	rootCmd.AddCommand(reminderCmd)
	reminderCmd.AddCommand(reminderSetCmd, reminderShowCmd, reminderCheckCmd)

	reminderSetCmd.Flags().BoolVar(&reminderEnable, "enable", false, "Turn reminders on")
	reminderSetCmd.Flags().BoolVar(&reminderDisable, "disable", false, "Turn reminders off")
	reminderSetCmd.Flags().StringVar(&reminderTime, "time", "", "Check-in time HH:MM")
	reminderSetCmd.Flags().StringVar(&reminderFrequency, "frequency", "", "Frequency: "+strings.Join([]string{string(model.FrequencyDaily), string(model.FrequencyWeekdays), string(model.FrequencyCustom)}, "|"))
	reminderSetCmd.Flags().StringSliceVar(&reminderWeekdays, "weekdays", nil, "Comma-separated weekdays for the weekdays frequency (e.g. mon,wed,fri)")
	reminderSetCmd.Flags().StringSliceVar(&reminderCustomDays, "custom-days", nil, "Comma-separated dates YYYY-MM-DD for the custom frequency")
	reminderShowCmd.Flags().BoolVar(&reminderJSON, "json", false, "Output as JSON")
}
