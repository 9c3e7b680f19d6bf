package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/model"
)

const exportFormatVersion = 1

type ExportData struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	UserID     string        `json:"user_id"`
	Entries    []model.Entry `json:"entries"`
}

type ImportMode string

const (
	ImportModeFail ImportMode = "fail"
	ImportModeSkip ImportMode = "skip"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

func ExportHistory(ctx context.Context, repo HistoryRepository, userID string, now time.Time) (*ExportData, error) {
	entries, err := ListHistory(ctx, repo, userID, ListHistoryFilter{})
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Version:    exportFormatVersion,
		ExportedAt: now.UTC().Truncate(time.Second),
		UserID:     strings.TrimSpace(userID),
		Entries:    entries,
	}, nil
}

// ImportHistory appends entries from an export into userID's history. Stored
// mood scores are carried over unchanged; entries without a score are scored
// on import. Entries whose id already exists are conflicts.
func ImportHistory(ctx context.Context, repo HistoryRepository, userID string, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if data == nil {
		return report, fmt.Errorf("%w: import payload is required", apperrors.ErrInvalidInput)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = strings.TrimSpace(data.UserID)
	}
	if userID == "" {
		return report, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	mode := normalizeImportMode(opts.Mode)
	if mode == "" {
		return report, fmt.Errorf("%w: invalid import mode %q (use fail|skip)", apperrors.ErrInvalidInput, opts.Mode)
	}

	existing, err := repo.LoadHistory(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("load history: %w", err)
	}
	ids := make(map[string]bool, len(existing))
	for _, e := range existing {
		ids[e.ID] = true
	}

	pending := make([]model.Entry, 0, len(data.Entries))
	for i, e := range data.Entries {
		e, warning, err := normalizeImportedEntry(e, userID)
		if err != nil {
			return report, fmt.Errorf("import entry %d: %w", i+1, err)
		}
		if warning != "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("entry %d: %s", i+1, warning))
		}
		if ids[e.ID] {
			report.Conflicts++
			if mode == ImportModeFail {
				return report, fmt.Errorf("%w: entry %q already exists (use --mode skip)", apperrors.ErrInvalidInput, e.ID)
			}
			report.Skipped++
			continue
		}
		ids[e.ID] = true
		pending = append(pending, e)
	}

	if opts.DryRun {
		report.Inserted = len(pending)
		return report, nil
	}
	for _, e := range pending {
		if err := repo.AppendEntry(ctx, userID, e); err != nil {
			return report, fmt.Errorf("import entry %s: %w", e.ID, err)
		}
		report.Inserted++
	}
	return report, nil
}

func normalizeImportedEntry(e model.Entry, userID string) (model.Entry, string, error) {
	warning := ""
	if e.Date.IsZero() {
		return e, "", fmt.Errorf("%w: date is required", apperrors.ErrInvalidInput)
	}
	if err := validateEntryDate(e.Date, time.Time{}); err != nil {
		return e, "", err
	}
	e.UserID = userID
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = e.Date
	}

	mood, err := ParseMood(string(e.Mood))
	if err != nil {
		return e, "", err
	}
	e.Mood = mood
	if e.Weather, err = ParseWeather(string(e.Weather)); err != nil {
		return e, "", err
	}
	activities := make([]string, 0, len(e.Activities))
	for _, a := range e.Activities {
		activities = append(activities, string(a))
	}
	if e.Activities, err = ParseActivities(activities); err != nil {
		return e, "", err
	}
	health := make([]string, 0, len(e.PhysicalHealth))
	for _, h := range e.PhysicalHealth {
		health = append(health, string(h))
	}
	if e.PhysicalHealth, err = ParseHealthTags(health); err != nil {
		return e, "", err
	}

	if e.MoodScore == 0 {
		e.MoodScore = Score(ScoreInputFromEntry(e))
		warning = "missing mood score, computed on import"
	}
	if e.MoodScore < minScore || e.MoodScore > maxScore {
		return e, "", fmt.Errorf("%w: mood score %d out of range", apperrors.ErrInvalidInput, e.MoodScore)
	}
	return e, warning, nil
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch ImportMode(normalizeName(string(mode))) {
	case "", ImportModeFail:
		return ImportModeFail
	case ImportModeSkip:
		return ImportModeSkip
	default:
		return ""
	}
}
