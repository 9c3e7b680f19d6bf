package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

type DoctorReport struct {
	InvalidScores  int `json:"invalid_scores"`
	UnknownValues  int `json:"unknown_values"`
	InvalidTagRows int `json:"invalid_tag_rows"`
	SameDayEntries int `json:"same_day_entries"`
	FixedTagRows   int `json:"fixed_tag_rows,omitempty"`
}

// RunDoctor checks stored mood entries for values the engine cannot trust.
// With fix, unreadable tag columns are reset to empty lists; scores are never
// rewritten.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`SELECT COUNT(1) FROM mood_entries WHERE mood_score < 1 OR mood_score > 10`).Scan(&report.InvalidScores); err != nil {
		return report, fmt.Errorf("doctor score check: %w", err)
	}

	rows, err := db.Query(`SELECT id, mood, IFNULL(weather,''), activities_json, physical_health_json FROM mood_entries`)
	if err != nil {
		return report, fmt.Errorf("doctor tag query: %w", err)
	}
	invalidIDs := make([]string, 0)
	for rows.Next() {
		var id, mood, weather, activities, health string
		if err := rows.Scan(&id, &mood, &weather, &activities, &health); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor tag scan: %w", err)
		}
		if _, err := ParseMood(mood); err != nil {
			report.UnknownValues++
		} else if _, err := ParseWeather(weather); err != nil {
			report.UnknownValues++
		}
		if !validTagList(activities, func(v []string) error { _, err := ParseActivities(v); return err }) ||
			!validTagList(health, func(v []string) error { _, err := ParseHealthTags(v); return err }) {
			report.InvalidTagRows++
			invalidIDs = append(invalidIDs, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor tag iterate: %w", err)
	}
	_ = rows.Close()

	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM mood_entries
  GROUP BY user_id, date
  HAVING cnt > 1
)
`).Scan(&report.SameDayEntries); err != nil {
		return report, fmt.Errorf("doctor same-day query: %w", err)
	}

	if fix && len(invalidIDs) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, id := range invalidIDs {
			if _, err := tx.Exec(`UPDATE mood_entries SET activities_json = '[]', physical_health_json = '[]' WHERE id = ?`, id); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix tag row %s: %w", id, err)
			}
			report.FixedTagRows++
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}

	return report, nil
}

// Healthy reports whether the checks found nothing that needs attention.
// Several entries on one day are allowed and do not count.
func (r DoctorReport) Healthy() bool {
	return r.InvalidScores == 0 && r.UnknownValues == 0 && r.InvalidTagRows == 0
}

func validTagList(raw string, check func([]string) error) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return false
	}
	return check(values) == nil
}
