package db_test

import (
	"path/filepath"
	"testing"

	"github.com/keshangamage/Moodmate/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "moodmate.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 3 {
		t.Fatalf("expected 3 migration versions, got %d", migrationCount)
	}

	version, err := db.SchemaVersion(sqldb)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 3 {
		t.Fatalf("expected schema version 3, got %d", version)
	}

	for _, table := range []string{"mood_entries", "app_config", "reminder_preferences"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	var scoreColCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM pragma_table_info('mood_entries') WHERE name = 'mood_score'`).Scan(&scoreColCount); err != nil {
		t.Fatalf("check mood_score column: %v", err)
	}
	if scoreColCount != 1 {
		t.Fatalf("expected mood_score column in mood_entries table")
	}
}

func TestReminderFrequencyConstraint(t *testing.T) {
	t.Parallel()

	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "moodmate.db"))
	if err != nil {
		t.Fatalf("open migrated db: %v", err)
	}
	defer sqldb.Close()

	_, err = sqldb.Exec(`INSERT INTO reminder_preferences(user_id, frequency) VALUES('alice', 'hourly')`)
	if err == nil {
		t.Fatalf("expected check constraint to reject unknown frequency")
	}
}
