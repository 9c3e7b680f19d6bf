// Package postgres stores mood history in PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/keshangamage/Moodmate/internal/model"
)

// entryModel maps to the mood_entries table.
type entryModel struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"uniqueIndex:uq_mood_entries_user_seq,priority:1;not null"`
	Seq            int64     `gorm:"uniqueIndex:uq_mood_entries_user_seq,priority:2;not null"`
	Date           string    `gorm:"size:10;not null"`
	RecordedAt     time.Time `gorm:"not null"`
	Mood           string    `gorm:"not null"`
	SleepHours     float64
	Activities     []string `gorm:"serializer:json"`
	StressLevel    int
	EnergyLevel    int
	Weather        string
	PhysicalHealth []string `gorm:"serializer:json"`
	Notes          string
	MoodScore      int `gorm:"not null"`
	CreatedAt      time.Time
}

func (entryModel) TableName() string {
	return "mood_entries"
}

// maxAppendAttempts bounds retries when concurrent appends race for the
// same (user_id, seq).
const maxAppendAttempts = 10

type Store struct {
	db *gorm.DB
}

// New wraps an open connection. db should be opened with TranslateError so
// sequence conflicts are retried.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn and migrates the mood_entries table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return New(db), nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entryModel{}); err != nil {
		return fmt.Errorf("failed to migrate mood_entries: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AppendEntry assigns the next per-user seq inside a transaction. Two
// concurrent appends can read the same MAX(seq); the unique index rejects the
// loser, which retries with a fresh seq.
func (s *Store) AppendEntry(ctx context.Context, userID string, e model.Entry) error {
	record := entryFromModel(userID, e)
	err := retryOnDuplicate(maxAppendAttempts, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var next int64
			if err := tx.Model(&entryModel{}).
				Where("user_id = ?", userID).
				Select("COALESCE(MAX(seq), 0) + 1").
				Scan(&next).Error; err != nil {
				return fmt.Errorf("failed to compute entry sequence: %w", err)
			}
			record.Seq = next
			return tx.Create(&record).Error
		})
	}, func() bool {
		var n int64
		return s.db.WithContext(ctx).Model(&entryModel{}).Where("id = ?", e.ID).Count(&n).Error == nil && n > 0
	})
	if err != nil {
		return fmt.Errorf("failed to insert mood entry: %w", err)
	}
	slog.Debug("appended entry", "store", "postgres", "user", userID, "id", e.ID, "seq", record.Seq)
	return nil
}

// retryOnDuplicate runs fn until it stops failing with a duplicate key. A
// duplicate caused by the entry id itself (idTaken) is returned at once.
func retryOnDuplicate(attempts int, fn func() error, idTaken func() bool) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if idTaken() {
			return fmt.Errorf("entry already exists: %w", err)
		}
		slog.Debug("entry sequence conflict, retrying", "attempt", i+1)
	}
	return err
}

func (s *Store) LoadHistory(ctx context.Context, userID string) ([]model.Entry, error) {
	var records []entryModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	out := make([]model.Entry, 0, len(records))
	for _, r := range records {
		e, err := entryToModel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	slog.Debug("loaded history", "store", "postgres", "user", userID, "entries", len(out))
	return out, nil
}

func entryFromModel(userID string, e model.Entry) entryModel {
	activities := make([]string, 0, len(e.Activities))
	for _, a := range e.Activities {
		activities = append(activities, string(a))
	}
	health := make([]string, 0, len(e.PhysicalHealth))
	for _, h := range e.PhysicalHealth {
		health = append(health, string(h))
	}
	return entryModel{
		ID:             e.ID,
		UserID:         userID,
		Date:           e.DateString(),
		RecordedAt:     e.RecordedAt,
		Mood:           string(e.Mood),
		SleepHours:     e.SleepHours,
		Activities:     activities,
		StressLevel:    e.StressLevel,
		EnergyLevel:    e.EnergyLevel,
		Weather:        string(e.Weather),
		PhysicalHealth: health,
		Notes:          e.Notes,
		MoodScore:      e.MoodScore,
	}
}

func entryToModel(r entryModel) (model.Entry, error) {
	date, err := time.ParseInLocation(model.DateLayout, r.Date, time.Local)
	if err != nil {
		return model.Entry{}, fmt.Errorf("failed to parse entry %s date %q: %w", r.ID, r.Date, err)
	}
	e := model.Entry{
		ID:             r.ID,
		UserID:         r.UserID,
		Date:           date,
		RecordedAt:     r.RecordedAt,
		Mood:           model.Mood(r.Mood),
		SleepHours:     r.SleepHours,
		Activities:     make([]model.Activity, 0, len(r.Activities)),
		StressLevel:    r.StressLevel,
		EnergyLevel:    r.EnergyLevel,
		Weather:        model.Weather(r.Weather),
		PhysicalHealth: make([]model.HealthTag, 0, len(r.PhysicalHealth)),
		Notes:          r.Notes,
		MoodScore:      r.MoodScore,
	}
	for _, a := range r.Activities {
		e.Activities = append(e.Activities, model.Activity(a))
	}
	for _, h := range r.PhysicalHealth {
		e.PhysicalHealth = append(e.PhysicalHealth, model.HealthTag(h))
	}
	return e, nil
}
