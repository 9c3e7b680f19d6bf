package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshangamage/Moodmate/internal/db"
	"github.com/keshangamage/Moodmate/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moodmate.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(model.DateLayout, value, time.Local)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return d
}

// scored builds an entry with an explicit score, bypassing the scorer.
func scored(t *testing.T, date string, mood model.Mood, score int) model.Entry {
	t.Helper()
	d := day(t, date)
	return model.Entry{
		ID:          date + "-" + string(mood),
		UserID:      "u1",
		Date:        d,
		RecordedAt:  d.Add(12 * time.Hour),
		Mood:        mood,
		SleepHours:  8,
		StressLevel: 5,
		EnergyLevel: 5,
		MoodScore:   score,
	}
}

// series returns n consecutive daily entries starting at start.
func series(t *testing.T, start string, n int, build func(i int, e *model.Entry)) []model.Entry {
	t.Helper()
	first := day(t, start)
	out := make([]model.Entry, 0, n)
	for i := 0; i < n; i++ {
		d := first.AddDate(0, 0, i)
		e := scored(t, d.Format(model.DateLayout), model.MoodNeutral, 5)
		e.ID = d.Format("20060102") + "-" + string(rune('a'+i%26))
		if build != nil {
			build(i, &e)
		}
		out = append(out, e)
	}
	return out
}
