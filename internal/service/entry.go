package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/clock"
	"github.com/keshangamage/Moodmate/internal/model"
)

const (
	minEntryYear  = 1900
	maxSleepHours = 24.0
	minLevel      = 1
	maxLevel      = 10
)

// HistoryRepository stores each user's entries append-only. LoadHistory must
// return a snapshot the caller may freely modify.
type HistoryRepository interface {
	LoadHistory(ctx context.Context, userID string) ([]model.Entry, error)
	AppendEntry(ctx context.Context, userID string, entry model.Entry) error
}

type CreateEntryInput struct {
	UserID         string
	Date           string
	RecordedAt     time.Time
	Mood           string
	SleepHours     float64
	Activities     []string
	StressLevel    int
	EnergyLevel    int
	Weather        string
	PhysicalHealth []string
	Notes          string
}

type ListHistoryFilter struct {
	FromDate string
	ToDate   string
	Limit    int
}

// NewEntry validates in and builds a scored entry without storing it.
func NewEntry(c clock.Clock, in CreateEntryInput) (model.Entry, error) {
	if c == nil {
		c = clock.SystemClock{}
	}
	now := c.Now()

	e := model.Entry{
		UserID:      strings.TrimSpace(in.UserID),
		RecordedAt:  in.RecordedAt,
		SleepHours:  in.SleepHours,
		StressLevel: in.StressLevel,
		EnergyLevel: in.EnergyLevel,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if e.UserID == "" {
		return model.Entry{}, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now
	}

	if strings.TrimSpace(in.Date) == "" {
		e.Date = beginningOfDay(now)
	} else {
		d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(in.Date), time.Local)
		if err != nil {
			return model.Entry{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, in.Date)
		}
		e.Date = d
	}
	if err := validateEntryDate(e.Date, now); err != nil {
		return model.Entry{}, err
	}

	mood, err := ParseMood(in.Mood)
	if err != nil {
		return model.Entry{}, err
	}
	e.Mood = mood

	if e.SleepHours < 0 || e.SleepHours > maxSleepHours {
		return model.Entry{}, fmt.Errorf("%w: sleep hours must be between 0 and 24", apperrors.ErrInvalidInput)
	}
	if e.StressLevel == 0 {
		e.StressLevel = defaultLevel
	}
	if e.EnergyLevel == 0 {
		e.EnergyLevel = defaultLevel
	}
	if err := validateLevel("stress level", e.StressLevel); err != nil {
		return model.Entry{}, err
	}
	if err := validateLevel("energy level", e.EnergyLevel); err != nil {
		return model.Entry{}, err
	}

	if e.Activities, err = ParseActivities(in.Activities); err != nil {
		return model.Entry{}, err
	}
	if e.Weather, err = ParseWeather(in.Weather); err != nil {
		return model.Entry{}, err
	}
	if e.PhysicalHealth, err = ParseHealthTags(in.PhysicalHealth); err != nil {
		return model.Entry{}, err
	}

	e.ID = uuid.NewString()
	e.MoodScore = Score(ScoreInputFromEntry(e))
	return e, nil
}

// CreateEntry validates, scores and appends one check-in.
func CreateEntry(ctx context.Context, repo HistoryRepository, c clock.Clock, in CreateEntryInput) (model.Entry, error) {
	e, err := NewEntry(c, in)
	if err != nil {
		return model.Entry{}, err
	}
	if err := repo.AppendEntry(ctx, e.UserID, e); err != nil {
		return model.Entry{}, fmt.Errorf("append entry: %w", err)
	}
	return e, nil
}

// ListHistory returns the user's entries ordered by date. Limit keeps the
// newest entries.
func ListHistory(ctx context.Context, repo HistoryRepository, userID string, f ListHistoryFilter) ([]model.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	if f.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", apperrors.ErrInvalidInput)
	}
	var from, to time.Time
	var err error
	if strings.TrimSpace(f.FromDate) != "" {
		if from, err = parseFilterDate("from", f.FromDate); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(f.ToDate) != "" {
		if to, err = parseFilterDate("to", f.ToDate); err != nil {
			return nil, err
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: --to must be on or after --from", apperrors.ErrInvalidInput)
	}

	history, err := repo.LoadHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]model.Entry, 0, len(history))
	for _, e := range sortByDate(history) {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 {
		out = recentWindow(out, f.Limit)
	}
	return out, nil
}

// FindEntry looks up one entry by id or unique id prefix.
func FindEntry(ctx context.Context, repo HistoryRepository, userID, id string) (model.Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Entry{}, fmt.Errorf("%w: entry id is required", apperrors.ErrInvalidInput)
	}
	history, err := repo.LoadHistory(ctx, userID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("load history: %w", err)
	}
	var match *model.Entry
	for i := range history {
		if history[i].ID == id {
			return history[i], nil
		}
		if strings.HasPrefix(history[i].ID, id) {
			if match != nil {
				return model.Entry{}, fmt.Errorf("%w: entry id %q is ambiguous", apperrors.ErrInvalidInput, id)
			}
			match = &history[i]
		}
	}
	if match == nil {
		return model.Entry{}, fmt.Errorf("entry %q: %w", id, apperrors.ErrNotFound)
	}
	return *match, nil
}

func ParseMood(value string) (model.Mood, error) {
	v := model.Mood(normalizeName(value))
	if v == "" {
		return "", fmt.Errorf("%w: mood is required", apperrors.ErrInvalidInput)
	}
	for _, m := range model.Moods {
		if m == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mood %q", apperrors.ErrInvalidInput, value)
}

func ParseWeather(value string) (model.Weather, error) {
	v := model.Weather(normalizeName(value))
	if v == model.WeatherUnset {
		return v, nil
	}
	for _, w := range model.Weathers {
		if w == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown weather %q", apperrors.ErrInvalidInput, value)
}

// ParseActivities lower-cases and de-duplicates activity names, keeping the
// first occurrence.
func ParseActivities(values []string) ([]model.Activity, error) {
	out := make([]model.Activity, 0, len(values))
	for _, raw := range values {
		v := model.Activity(normalizeName(raw))
		if v == "" {
			continue
		}
		known := false
		for _, a := range model.Activities {
			if a == v {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: unknown activity %q", apperrors.ErrInvalidInput, raw)
		}
		if containsActivity(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func ParseHealthTags(values []string) ([]model.HealthTag, error) {
	out := make([]model.HealthTag, 0, len(values))
	seen := map[model.HealthTag]bool{}
	for _, raw := range values {
		v := model.HealthTag(normalizeName(raw))
		if v == "" {
			continue
		}
		known := false
		for _, h := range model.HealthTags {
			if h == v {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: unknown physical health tag %q", apperrors.ErrInvalidInput, raw)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func validateLevel(name string, value int) error {
	if value < minLevel || value > maxLevel {
		return fmt.Errorf("%w: %s must be between %d and %d", apperrors.ErrInvalidInput, name, minLevel, maxLevel)
	}
	return nil
}

// validateEntryDate keeps check-in dates between minEntryYear and today.
// A zero time is rejected too; it would be stored as an empty date.
func validateEntryDate(d, now time.Time) error {
	if d.IsZero() || d.Year() < minEntryYear {
		return fmt.Errorf("%w: date must be on or after %d-01-01", apperrors.ErrInvalidInput, minEntryYear)
	}
	if !now.IsZero() && d.After(beginningOfDay(now)) {
		return fmt.Errorf("%w: date %s is in the future", apperrors.ErrInvalidInput, d.Format(model.DateLayout))
	}
	return nil
}

func parseFilterDate(name, value string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s date %q (expected YYYY-MM-DD)", apperrors.ErrInvalidInput, name, value)
	}
	return d, nil
}

// LatestEntry returns the most recent entry by date; the last one added wins
// among entries on the same day. history must not be empty.
func LatestEntry(history []model.Entry) model.Entry {
	sorted := sortByDate(history)
	return sorted[len(sorted)-1]
}
