package service_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, time.Local)
	if err != nil {
		t.Fatalf("parse %s %s: %v", date, clock, err)
	}
	return v
}

func TestReminderDueWindow(t *testing.T) {
	prefs := service.DefaultReminderPreferences("u1")
	prefs.Enabled = true

	cases := []struct {
		clock string
		want  bool
	}{
		{"20:00:00", true},
		{"19:59:01", true},
		{"20:00:59", true},
		{"20:01:00", false},
		{"19:59:00", false},
		{"08:00:00", false},
	}
	for _, tc := range cases {
		if got := service.ReminderDue(prefs, at(t, "2024-07-15", tc.clock)); got != tc.want {
			t.Fatalf("at %s: expected %v, got %v", tc.clock, tc.want, got)
		}
	}

	prefs.Enabled = false
	if service.ReminderDue(prefs, at(t, "2024-07-15", "20:00:00")) {
		t.Fatalf("disabled reminder fired")
	}
}

func TestReminderDueFrequencies(t *testing.T) {
	prefs := service.DefaultReminderPreferences("u1")
	prefs.Enabled = true
	prefs.CheckInTime = "09:30"

	prefs.Frequency = model.FrequencyWeekdays
	prefs.Weekdays = []string{"monday", "Wednesday"}
	// 2024-07-15 is a Monday, 2024-07-16 a Tuesday.
	if !service.ReminderDue(prefs, at(t, "2024-07-15", "09:30:00")) {
		t.Fatalf("expected weekday reminder on Monday")
	}
	if service.ReminderDue(prefs, at(t, "2024-07-16", "09:30:00")) {
		t.Fatalf("unexpected reminder on Tuesday")
	}

	prefs.Frequency = model.FrequencyCustom
	prefs.CustomDays = []string{"2024-07-16"}
	if !service.ReminderDue(prefs, at(t, "2024-07-16", "09:30:10")) {
		t.Fatalf("expected custom-day reminder")
	}
	if service.ReminderDue(prefs, at(t, "2024-07-15", "09:30:00")) {
		t.Fatalf("unexpected reminder outside custom days")
	}

	prefs.CheckInTime = "9h30"
	if service.ReminderDue(prefs, at(t, "2024-07-16", "09:30:00")) {
		t.Fatalf("malformed time must never fire")
	}
}

func TestNormalizeReminderPreferences(t *testing.T) {
	prefs := model.ReminderPreferences{
		UserID:    " u1 ",
		Frequency: "WEEKDAYS",
		Weekdays:  []string{"mon", "Fri"},
	}
	got, err := service.NormalizeReminderPreferences(prefs)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.UserID != "u1" || got.CheckInTime != "20:00" || got.Frequency != model.FrequencyWeekdays {
		t.Fatalf("unexpected normalized prefs %+v", got)
	}
	if !reflect.DeepEqual(got.Weekdays, []string{"Monday", "Friday"}) {
		t.Fatalf("unexpected weekdays %v", got.Weekdays)
	}

	bad := []model.ReminderPreferences{
		{UserID: ""},
		{UserID: "u1", CheckInTime: "25:00"},
		{UserID: "u1", Frequency: "hourly"},
		{UserID: "u1", Weekdays: []string{"someday"}},
		{UserID: "u1", CustomDays: []string{"07/16/2024"}},
	}
	for i, p := range bad {
		if _, err := service.NormalizeReminderPreferences(p); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestReminderPreferencesPersistence(t *testing.T) {
	sqldb := newTestDB(t)

	prefs, err := service.LoadReminderPreferences(sqldb, "u1")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if prefs.Enabled || prefs.CheckInTime != "20:00" || prefs.Frequency != model.FrequencyDaily || len(prefs.Weekdays) != 5 {
		t.Fatalf("expected defaults, got %+v", prefs)
	}

	prefs.Enabled = true
	prefs.CheckInTime = "07:45"
	prefs.Frequency = model.FrequencyCustom
	prefs.CustomDays = []string{"2024-07-16", "2024-07-18"}
	if _, err := service.SaveReminderPreferences(sqldb, prefs); err != nil {
		t.Fatalf("save: %v", err)
	}
	prefs.CheckInTime = "08:00"
	if _, err := service.SaveReminderPreferences(sqldb, prefs); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := service.LoadReminderPreferences(sqldb, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Enabled || got.CheckInTime != "08:00" || got.Frequency != model.FrequencyCustom {
		t.Fatalf("unexpected stored prefs %+v", got)
	}
	if !reflect.DeepEqual(got.CustomDays, prefs.CustomDays) {
		t.Fatalf("custom days mismatch: %v", got.CustomDays)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be set")
	}

	if _, err := service.LoadReminderPreferences(sqldb, "u2"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("preferences leaked across users: %v", err)
	}
}
