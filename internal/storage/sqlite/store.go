// Package sqlite stores mood history in the local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/keshangamage/Moodmate/internal/model"
)

// Store keeps entries in the mood_entries table. Insertion order is kept in a
// per-user sequence so same-day entries load in the order they were added.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AppendEntry(ctx context.Context, userID string, e model.Entry) error {
	if e.Activities == nil {
		e.Activities = []model.Activity{}
	}
	if e.PhysicalHealth == nil {
		e.PhysicalHealth = []model.HealthTag{}
	}
	activities, err := json.Marshal(e.Activities)
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}
	health, err := json.Marshal(e.PhysicalHealth)
	if err != nil {
		return fmt.Errorf("encode physical health: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM mood_entries WHERE user_id = ?`, userID).Scan(&seq); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("next entry sequence: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO mood_entries(id, user_id, date, recorded_at, mood, sleep_hours, activities_json, stress_level, energy_level, weather, physical_health_json, notes, mood_score, seq)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, userID, e.DateString(), e.RecordedAt.Format(time.RFC3339Nano), string(e.Mood), e.SleepHours, string(activities),
		e.StressLevel, e.EnergyLevel, nullableString(string(e.Weather)), string(health), nullableString(e.Notes), e.MoodScore, seq)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert mood entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mood entry: %w", err)
	}
	slog.Debug("appended entry", "store", "sqlite", "user", userID, "id", e.ID, "seq", seq)
	return nil
}

func (s *Store) LoadHistory(ctx context.Context, userID string) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, date, recorded_at, mood, sleep_hours, activities_json, stress_level, energy_level, IFNULL(weather,''), physical_health_json, IFNULL(notes,''), mood_score
FROM mood_entries
WHERE user_id = ?
ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query mood entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.Entry, 0)
	for rows.Next() {
		var e model.Entry
		var date, recorded, mood, activities, weather, health string
		if err := rows.Scan(&e.ID, &e.UserID, &date, &recorded, &mood, &e.SleepHours, &activities, &e.StressLevel, &e.EnergyLevel, &weather, &health, &e.Notes, &e.MoodScore); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		if e.Date, err = time.ParseInLocation(model.DateLayout, date, time.Local); err != nil {
			return nil, fmt.Errorf("parse entry %s date %q: %w", e.ID, date, err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("parse entry %s recorded_at %q: %w", e.ID, recorded, err)
		}
		e.Mood = model.Mood(mood)
		e.Weather = model.Weather(weather)
		if err := json.Unmarshal([]byte(activities), &e.Activities); err != nil {
			return nil, fmt.Errorf("decode entry %s activities: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(health), &e.PhysicalHealth); err != nil {
			return nil, fmt.Errorf("decode entry %s physical health: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood entries: %w", err)
	}
	slog.Debug("loaded history", "store", "sqlite", "user", userID, "entries", len(out))
	return out, nil
}

// Users lists every user with at least one entry.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM mood_entries ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
