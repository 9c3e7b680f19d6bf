package service

import (
	"time"

	"github.com/keshangamage/Moodmate/internal/model"
)

const (
	rollingWindowDays = 7
	trendFlatSlope    = 0.05

	// MaxSeriesDays bounds the per-day series; older days are left out of
	// Days, Rolling7, the streak and the trend.
	MaxSeriesDays = 3 * 366
)

type DayMood struct {
	Date    string     `json:"date"`
	Logged  bool       `json:"logged"`
	Entries int        `json:"entries"`
	Score   float64    `json:"score"`
	Mood    model.Mood `json:"mood,omitempty"`
}

type RollingPoint struct {
	Date     string  `json:"date"`
	AvgScore float64 `json:"avg_score"`
	Samples  int     `json:"samples"`
}

type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type TrendStat struct {
	SlopePerDay float64 `json:"slope_per_day"`
	Direction   string  `json:"direction"`
}

type MoodSummary struct {
	FromDate      string             `json:"from_date,omitempty"`
	ToDate        string             `json:"to_date,omitempty"`
	Entries       int                `json:"entries"`
	LoggedDays    int                `json:"logged_days"`
	AvgScore      float64            `json:"avg_score"`
	HighestDay    *DayMood           `json:"highest_day,omitempty"`
	LowestDay     *DayMood           `json:"lowest_day,omitempty"`
	MoodCounts    map[model.Mood]int `json:"mood_counts"`
	LoggingStreak Streak             `json:"logging_streak"`
	Trend         TrendStat          `json:"trend"`
	Rolling7      []RollingPoint     `json:"rolling_7"`
	Days          []DayMood          `json:"days"`
	Truncated     bool               `json:"truncated,omitempty"`
}

type CalendarDay struct {
	Day   string `json:"day"`
	Value int    `json:"value"`
}

// SummarizeMood builds chart-ready series over the history. Totals cover
// every entry; the day series covers at most MaxSeriesDays. asOf
// extends the range to "today" so the current streak reflects missed days;
// pass the zero time to end at the last logged day.
func SummarizeMood(history []model.Entry, asOf time.Time) MoodSummary {
	out := MoodSummary{
		MoodCounts: map[model.Mood]int{},
		Rolling7:   make([]RollingPoint, 0),
		Days:       make([]DayMood, 0),
	}
	entries := make([]model.Entry, 0, len(history))
	for _, e := range sortByDate(history) {
		if e.Date.IsZero() {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return out
	}

	from := beginningOfDay(entries[0].Date)
	to := beginningOfDay(entries[len(entries)-1].Date)
	if !asOf.IsZero() && beginningOfDay(asOf).After(to) {
		to = beginningOfDay(asOf)
	}
	if earliest := to.AddDate(0, 0, -(MaxSeriesDays - 1)); from.Before(earliest) {
		from = earliest
		out.Truncated = true
	}
	out.FromDate = from.Format(model.DateLayout)
	out.ToDate = to.Format(model.DateLayout)
	out.Days = buildDaySeries(entries, from, to)

	scores := make([]float64, 0, len(entries))
	for _, e := range entries {
		scores = append(scores, float64(e.MoodScore))
		out.MoodCounts[e.Mood]++
	}
	out.Entries = len(entries)
	out.AvgScore = avg(scores)

	for i := range out.Days {
		if out.Days[i].Logged {
			out.LoggedDays++
		}
	}
	out.HighestDay, out.LowestDay = extremeDays(out.Days)
	out.LoggingStreak = computeStreak(out.Days, func(d DayMood) bool { return d.Logged })
	out.Trend = trendFromDays(out.Days)
	out.Rolling7 = computeRollingWindow(out.Days, rollingWindowDays)
	return out
}

func buildDaySeries(entries []model.Entry, from, to time.Time) []DayMood {
	type acc struct {
		total float64
		count int
		last  model.Mood
	}
	byDay := map[string]*acc{}
	for _, e := range entries {
		key := e.Date.Format(model.DateLayout)
		item, ok := byDay[key]
		if !ok {
			item = &acc{}
			byDay[key] = item
		}
		item.total += float64(e.MoodScore)
		item.count++
		item.last = e.Mood
	}

	days := make([]DayMood, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateLayout)
		day := DayMood{Date: key}
		if item, ok := byDay[key]; ok {
			day.Logged = true
			day.Entries = item.count
			day.Score = item.total / float64(item.count)
			day.Mood = item.last
		}
		days = append(days, day)
	}
	return days
}

func extremeDays(days []DayMood) (*DayMood, *DayMood) {
	var high, low *DayMood
	for i := range days {
		if !days[i].Logged {
			continue
		}
		d := days[i]
		if high == nil || d.Score > high.Score {
			high = &d
		}
		if low == nil || d.Score < low.Score {
			low = &d
		}
	}
	return high, low
}

func computeStreak(days []DayMood, predicate func(DayMood) bool) Streak {
	out := Streak{}
	run := 0
	for i := range days {
		if predicate(days[i]) {
			run++
			if run > out.Longest {
				out.Longest = run
			}
			continue
		}
		run = 0
	}
	for i := len(days) - 1; i >= 0; i-- {
		if !predicate(days[i]) {
			break
		}
		out.Current++
	}
	return out
}

func computeRollingWindow(days []DayMood, windowDays int) []RollingPoint {
	out := make([]RollingPoint, 0)
	if windowDays <= 0 || len(days) < windowDays {
		return out
	}
	for i := windowDays - 1; i < len(days); i++ {
		values := make([]float64, 0, windowDays)
		for _, d := range days[i-(windowDays-1) : i+1] {
			if d.Logged {
				values = append(values, d.Score)
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, RollingPoint{
			Date:     days[i].Date,
			AvgScore: avg(values),
			Samples:  len(values),
		})
	}
	return out
}

func trendFromDays(days []DayMood) TrendStat {
	xs := make([]float64, 0, len(days))
	ys := make([]float64, 0, len(days))
	for i := range days {
		if !days[i].Logged {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, days[i].Score)
	}
	slope := linearRegressionSlope(xs, ys)
	direction := "flat"
	if slope >= trendFlatSlope {
		direction = "up"
	} else if slope <= -trendFlatSlope {
		direction = "down"
	}
	return TrendStat{SlopePerDay: slope, Direction: direction}
}

func linearRegressionSlope(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}
	denom := (float64(n) * sumX2) - (sumX * sumX)
	if denom == 0 {
		return 0
	}
	return ((float64(n) * sumXY) - (sumX * sumY)) / denom
}

// CalendarValues returns heatmap values for one calendar year. Days with
// several entries report the latest one.
func CalendarValues(history []model.Entry, year int) []CalendarDay {
	out := make([]CalendarDay, 0)
	index := map[string]int{}
	for _, e := range sortByDate(history) {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		key := e.Date.Format(model.DateLayout)
		if i, ok := index[key]; ok {
			out[i].Value = e.MoodScore
			continue
		}
		index[key] = len(out)
		out = append(out, CalendarDay{Day: key, Value: e.MoodScore})
	}
	return out
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
