package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/model"
)

const (
	defaultCheckInTime = "20:00"
	checkInTimeLayout  = "15:04"
	reminderWindow     = time.Minute
	ReminderMessage    = "How are you feeling today? Don't forget to log your mood and activities."
)

func DefaultReminderPreferences(userID string) model.ReminderPreferences {
	return model.ReminderPreferences{
		UserID:      userID,
		Enabled:     false,
		CheckInTime: defaultCheckInTime,
		Frequency:   model.FrequencyDaily,
		Weekdays:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		CustomDays:  []string{},
	}
}

// ReminderDue reports whether a check-in reminder should fire at now. The
// reminder fires within one minute either side of the configured time.
func ReminderDue(prefs model.ReminderPreferences, now time.Time) bool {
	if !prefs.Enabled {
		return false
	}
	at, err := time.Parse(checkInTimeLayout, strings.TrimSpace(prefs.CheckInTime))
	if err != nil {
		return false
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	diff := now.Sub(scheduled)
	if diff < 0 {
		diff = -diff
	}
	if diff >= reminderWindow {
		return false
	}

	switch prefs.Frequency {
	case model.FrequencyDaily:
		return true
	case model.FrequencyWeekdays:
		today := now.Weekday().String()
		for _, d := range prefs.Weekdays {
			if strings.EqualFold(strings.TrimSpace(d), today) {
				return true
			}
		}
		return false
	case model.FrequencyCustom:
		today := now.Format(model.DateLayout)
		for _, d := range prefs.CustomDays {
			if strings.TrimSpace(d) == today {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// NormalizeReminderPreferences validates prefs and canonicalizes weekday names.
func NormalizeReminderPreferences(prefs model.ReminderPreferences) (model.ReminderPreferences, error) {
	prefs.UserID = strings.TrimSpace(prefs.UserID)
	if prefs.UserID == "" {
		return prefs, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	prefs.CheckInTime = strings.TrimSpace(prefs.CheckInTime)
	if prefs.CheckInTime == "" {
		prefs.CheckInTime = defaultCheckInTime
	}
	if _, err := time.Parse(checkInTimeLayout, prefs.CheckInTime); err != nil {
		return prefs, fmt.Errorf("%w: invalid check-in time %q (expected HH:MM)", apperrors.ErrInvalidInput, prefs.CheckInTime)
	}
	prefs.Frequency = model.ReminderFrequency(strings.ToLower(strings.TrimSpace(string(prefs.Frequency))))
	switch prefs.Frequency {
	case "":
		prefs.Frequency = model.FrequencyDaily
	case model.FrequencyDaily, model.FrequencyWeekdays, model.FrequencyCustom:
	default:
		return prefs, fmt.Errorf("%w: invalid frequency %q (use daily|weekdays|custom)", apperrors.ErrInvalidInput, prefs.Frequency)
	}

	weekdays := make([]string, 0, len(prefs.Weekdays))
	for _, d := range prefs.Weekdays {
		name, ok := parseWeekdayName(d)
		if !ok {
			return prefs, fmt.Errorf("%w: invalid weekday %q", apperrors.ErrInvalidInput, d)
		}
		weekdays = append(weekdays, name)
	}
	prefs.Weekdays = weekdays

	days := make([]string, 0, len(prefs.CustomDays))
	for _, d := range prefs.CustomDays {
		d = strings.TrimSpace(d)
		if _, err := time.ParseInLocation(model.DateLayout, d, time.Local); err != nil {
			return prefs, fmt.Errorf("%w: invalid custom day %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, d)
		}
		days = append(days, d)
	}
	prefs.CustomDays = days
	return prefs, nil
}

func parseWeekdayName(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if v == strings.ToLower(name) || v == strings.ToLower(name[:3]) {
			return name, true
		}
	}
	return "", false
}

func SaveReminderPreferences(db *sql.DB, prefs model.ReminderPreferences) (model.ReminderPreferences, error) {
	prefs, err := NormalizeReminderPreferences(prefs)
	if err != nil {
		return prefs, err
	}
	weekdays, err := json.Marshal(prefs.Weekdays)
	if err != nil {
		return prefs, fmt.Errorf("encode reminder weekdays: %w", err)
	}
	customDays, err := json.Marshal(prefs.CustomDays)
	if err != nil {
		return prefs, fmt.Errorf("encode reminder custom days: %w", err)
	}
	enabled := 0
	if prefs.Enabled {
		enabled = 1
	}
	prefs.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err = db.Exec(`
INSERT INTO reminder_preferences(user_id, enabled, check_in_time, frequency, weekdays_json, custom_days_json, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  enabled=excluded.enabled,
  check_in_time=excluded.check_in_time,
  frequency=excluded.frequency,
  weekdays_json=excluded.weekdays_json,
  custom_days_json=excluded.custom_days_json,
  updated_at=excluded.updated_at
`, prefs.UserID, enabled, prefs.CheckInTime, string(prefs.Frequency), string(weekdays), string(customDays), prefs.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return prefs, fmt.Errorf("save reminder preferences for %q: %w", prefs.UserID, err)
	}
	return prefs, nil
}

// LoadReminderPreferences returns stored preferences, or the defaults wrapped
// with apperrors.ErrNotFound when the user has none.
func LoadReminderPreferences(db *sql.DB, userID string) (model.ReminderPreferences, error) {
	userID = strings.TrimSpace(userID)
	prefs := DefaultReminderPreferences(userID)
	var enabled int
	var frequency, weekdays, customDays, updated string
	err := db.QueryRow(`
SELECT enabled, check_in_time, frequency, weekdays_json, custom_days_json, updated_at
FROM reminder_preferences WHERE user_id = ?`, userID).Scan(&enabled, &prefs.CheckInTime, &frequency, &weekdays, &customDays, &updated)
	if err == sql.ErrNoRows {
		return prefs, fmt.Errorf("reminder preferences for %q: %w", userID, apperrors.ErrNotFound)
	}
	if err != nil {
		return prefs, fmt.Errorf("load reminder preferences for %q: %w", userID, err)
	}
	prefs.Enabled = enabled == 1
	prefs.Frequency = model.ReminderFrequency(frequency)
	if err := json.Unmarshal([]byte(weekdays), &prefs.Weekdays); err != nil {
		return prefs, fmt.Errorf("decode reminder weekdays: %w", err)
	}
	if err := json.Unmarshal([]byte(customDays), &prefs.CustomDays); err != nil {
		return prefs, fmt.Errorf("decode reminder custom days: %w", err)
	}
	prefs.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return prefs, nil
}
