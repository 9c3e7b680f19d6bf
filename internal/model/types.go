package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodAngry   Mood = "angry"
	MoodNeutral Mood = "neutral"
)

var Moods = []Mood{MoodHappy, MoodSad, MoodAnxious, MoodAngry, MoodNeutral}

type Activity string

const (
	ActivityExercise    Activity = "exercise"
	ActivityMeditation  Activity = "meditation"
	ActivitySocializing Activity = "socializing"
	ActivityHobby       Activity = "hobby"
	ActivityNature      Activity = "nature"
	ActivityWork        Activity = "work"
	ActivityStudy       Activity = "study"
	ActivityRest        Activity = "rest"
)

var Activities = []Activity{
	ActivityExercise, ActivityMeditation, ActivitySocializing, ActivityHobby,
	ActivityNature, ActivityWork, ActivityStudy, ActivityRest,
}

type Weather string

const (
	WeatherUnset  Weather = ""
	WeatherSunny  Weather = "sunny"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherSnowy  Weather = "snowy"
	WeatherStormy Weather = "stormy"
)

var Weathers = []Weather{WeatherSunny, WeatherCloudy, WeatherRainy, WeatherSnowy, WeatherStormy}

type HealthTag string

const (
	HealthHeadache HealthTag = "headache"
	HealthFatigue  HealthTag = "fatigue"
	HealthNausea   HealthTag = "nausea"
	HealthPain     HealthTag = "pain"
	HealthHealthy  HealthTag = "healthy"
)

var HealthTags = []HealthTag{HealthHeadache, HealthFatigue, HealthNausea, HealthPain, HealthHealthy}

// Entry is one day's check-in. MoodScore is computed once when the entry is
// created and stored alongside it.
type Entry struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Date           time.Time   `json:"-"`
	RecordedAt     time.Time   `json:"recorded_at"`
	Mood           Mood        `json:"mood"`
	SleepHours     float64     `json:"sleep_hours"`
	Activities     []Activity  `json:"activities"`
	StressLevel    int         `json:"stress_level"`
	EnergyLevel    int         `json:"energy_level"`
	Weather        Weather     `json:"weather,omitempty"`
	PhysicalHealth []HealthTag `json:"physical_health"`
	Notes          string      `json:"notes,omitempty"`
	MoodScore      int         `json:"mood_score"`
}

func (e Entry) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

type entryJSON Entry

// MarshalJSON writes Date as a plain calendar day.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date string `json:"date"`
		entryJSON
	}{Date: e.DateString(), entryJSON: entryJSON(e)})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date string `json:"date"`
		entryJSON
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry(raw.entryJSON)
	if raw.Date == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, raw.Date, time.Local)
	if err != nil {
		return fmt.Errorf("invalid entry date %q, expected YYYY-MM-DD", raw.Date)
	}
	e.Date = d
	return nil
}

func (e Entry) HasActivity(a Activity) bool {
	for _, v := range e.Activities {
		if v == a {
			return true
		}
	}
	return false
}

type InsightType string

const (
	InsightSleep    InsightType = "sleep"
	InsightMood     InsightType = "mood"
	InsightActivity InsightType = "activity"
	InsightEnergy   InsightType = "energy"
	InsightWeather  InsightType = "weather"
	InsightHealth   InsightType = "health"
	InsightTime     InsightType = "time"
	InsightWeekday  InsightType = "weekday"
	InsightSeasonal InsightType = "seasonal"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type InsightCategory string

const (
	CategoryNone       InsightCategory = ""
	CategoryHealth     InsightCategory = "health"
	CategoryPattern    InsightCategory = "pattern"
	CategorySuggestion InsightCategory = "suggestion"
)

type Insight struct {
	Type     InsightType     `json:"type"`
	Message  string          `json:"message"`
	Priority Priority        `json:"priority"`
	Category InsightCategory `json:"category,omitempty"`
}

type ReminderFrequency string

const (
	FrequencyDaily    ReminderFrequency = "daily"
	FrequencyWeekdays ReminderFrequency = "weekdays"
	FrequencyCustom   ReminderFrequency = "custom"
)

type ReminderPreferences struct {
	UserID      string            `json:"user_id"`
	Enabled     bool              `json:"enabled"`
	CheckInTime string            `json:"check_in_time"`
	Frequency   ReminderFrequency `json:"frequency"`
	Weekdays    []string          `json:"weekdays"`
	CustomDays  []string          `json:"custom_days"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty"`
}
