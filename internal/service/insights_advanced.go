package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/keshangamage/Moodmate/internal/model"
)

type Hemisphere string

const (
	HemisphereNorth Hemisphere = "north"
	HemisphereSouth Hemisphere = "south"
)

type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

var seasonOrder = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

const (
	morningStartHour = 5
	morningEndHour   = 12
	eveningStartHour = 17
	eveningEndHour   = 24

	seasonalMinTStat = 2.0
)

type AdvancedOptions struct {
	Hemisphere       Hemisphere
	MinSeasonSamples int
	SeasonalGap      float64
	MinComboSamples  int
	ComboThreshold   float64
	MaxCombos        int
}

func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{
		Hemisphere:       HemisphereNorth,
		MinSeasonSamples: 5,
		SeasonalGap:      1.0,
		MinComboSamples:  2,
		ComboThreshold:   7.0,
		MaxCombos:        3,
	}
}

func (o AdvancedOptions) withDefaults() AdvancedOptions {
	d := DefaultAdvancedOptions()
	if o.Hemisphere == "" {
		o.Hemisphere = d.Hemisphere
	}
	if o.MinSeasonSamples <= 0 {
		o.MinSeasonSamples = d.MinSeasonSamples
	}
	if o.SeasonalGap <= 0 {
		o.SeasonalGap = d.SeasonalGap
	}
	if o.MinComboSamples <= 0 {
		o.MinComboSamples = d.MinComboSamples
	}
	if o.ComboThreshold <= 0 {
		o.ComboThreshold = d.ComboThreshold
	}
	if o.MaxCombos <= 0 {
		o.MaxCombos = d.MaxCombos
	}
	return o
}

func ParseHemisphere(value string) (Hemisphere, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "north", "northern":
		return HemisphereNorth, nil
	case "south", "southern":
		return HemisphereSouth, nil
	default:
		return "", fmt.Errorf("invalid hemisphere %q (use north or south)", value)
	}
}

// DeriveAdvancedInsights looks for patterns across the full history.
func DeriveAdvancedInsights(history []model.Entry, opts AdvancedOptions) []model.Insight {
	insights := make([]model.Insight, 0)
	if len(history) == 0 {
		return insights
	}
	opts = opts.withDefaults()
	entries := sortByDate(history)

	if tod, ok := analyzeTimeOfDay(entries); ok {
		insights = append(insights, model.Insight{
			Type:     model.InsightTime,
			Message:  fmt.Sprintf("Your mood tends to be %s in the morning compared to evening.", tod.comparison()),
			Priority: model.PriorityMedium,
			Category: model.CategoryPattern,
		})
	}

	if day, ok := bestWeekday(entries); ok {
		insights = append(insights, model.Insight{
			Type:     model.InsightWeekday,
			Message:  fmt.Sprintf("Your mood tends to be highest on %ss. Consider scheduling important activities on these days.", day),
			Priority: model.PriorityMedium,
			Category: model.CategorySuggestion,
		})
	}

	if season, ok := lowSeason(entries, opts); ok {
		insights = append(insights, model.Insight{
			Type:     model.InsightSeasonal,
			Message:  fmt.Sprintf("Your mood shows seasonal patterns. You might benefit from light therapy or additional outdoor activities during %s.", season),
			Priority: model.PriorityHigh,
			Category: model.CategoryHealth,
		})
	}

	for _, combo := range BestActivityCombinations(entries, opts) {
		insights = append(insights, model.Insight{
			Type:     model.InsightActivity,
			Message:  fmt.Sprintf("The combination of %s and %s seems particularly beneficial for your mood.", combo.Activities[0], combo.Activities[1]),
			Priority: model.PriorityMedium,
			Category: model.CategorySuggestion,
		})
	}
	return insights
}

type timeOfDayMood struct {
	morning float64
	evening float64
}

func (t timeOfDayMood) comparison() string {
	switch {
	case t.morning > t.evening:
		return "higher"
	case t.morning < t.evening:
		return "lower"
	default:
		return "about the same"
	}
}

func analyzeTimeOfDay(entries []model.Entry) (timeOfDayMood, bool) {
	morning := make([]float64, 0)
	evening := make([]float64, 0)
	for _, e := range entries {
		if e.RecordedAt.IsZero() {
			continue
		}
		hour := e.RecordedAt.Hour()
		switch {
		case hour >= morningStartHour && hour < morningEndHour:
			morning = append(morning, float64(e.MoodScore))
		case hour >= eveningStartHour && hour < eveningEndHour:
			evening = append(evening, float64(e.MoodScore))
		}
	}
	if len(morning) == 0 || len(evening) == 0 {
		return timeOfDayMood{}, false
	}
	return timeOfDayMood{morning: avg(morning), evening: avg(evening)}, true
}

// bestWeekday picks the weekday with the highest mean score. Ties resolve to
// the earliest weekday, Sunday first.
func bestWeekday(entries []model.Entry) (time.Weekday, bool) {
	var totals [7]float64
	var counts [7]int
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		d := e.Date.Weekday()
		totals[d] += float64(e.MoodScore)
		counts[d]++
	}
	best := -1
	bestAvg := 0.0
	for d := 0; d < 7; d++ {
		if counts[d] == 0 {
			continue
		}
		mean := totals[d] / float64(counts[d])
		if best < 0 || mean > bestAvg {
			best = d
			bestAvg = mean
		}
	}
	if best < 0 {
		return time.Sunday, false
	}
	return time.Weekday(best), true
}

// SeasonOf maps a calendar day to its meteorological season.
func SeasonOf(t time.Time, h Hemisphere) Season {
	var s Season
	switch t.Month() {
	case time.December, time.January, time.February:
		s = SeasonWinter
	case time.March, time.April, time.May:
		s = SeasonSpring
	case time.June, time.July, time.August:
		s = SeasonSummer
	default:
		s = SeasonAutumn
	}
	if h != HemisphereSouth {
		return s
	}
	switch s {
	case SeasonWinter:
		return SeasonSummer
	case SeasonSummer:
		return SeasonWinter
	case SeasonSpring:
		return SeasonAutumn
	default:
		return SeasonSpring
	}
}

func lowSeason(entries []model.Entry, opts AdvancedOptions) (Season, bool) {
	bySeason := map[Season][]float64{}
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		s := SeasonOf(e.Date, opts.Hemisphere)
		bySeason[s] = append(bySeason[s], float64(e.MoodScore))
	}

	qualifying := make([]Season, 0, len(seasonOrder))
	for _, s := range seasonOrder {
		if len(bySeason[s]) >= opts.MinSeasonSamples {
			qualifying = append(qualifying, s)
		}
	}
	if len(qualifying) < 2 {
		return "", false
	}

	lowest := qualifying[0]
	for _, s := range qualifying[1:] {
		if avg(bySeason[s]) < avg(bySeason[lowest]) {
			lowest = s
		}
	}
	rest := make([]float64, 0)
	for _, s := range qualifying {
		if s != lowest {
			rest = append(rest, bySeason[s]...)
		}
	}

	low := bySeason[lowest]
	gap := avg(rest) - avg(low)
	if gap < opts.SeasonalGap {
		return "", false
	}
	if welchT(low, rest) < seasonalMinTStat {
		return "", false
	}
	return lowest, true
}

// welchT returns |t| for the difference of means. Two constant samples with
// different means yield +Inf.
func welchT(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	se := math.Sqrt(sampleVariance(a)/float64(len(a)) + sampleVariance(b)/float64(len(b)))
	diff := math.Abs(avg(a) - avg(b))
	if se == 0 {
		if diff == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return diff / se
}

func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := avg(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

type ActivityCombination struct {
	Activities [2]model.Activity `json:"activities"`
	AvgScore   float64           `json:"avg_score"`
	Samples    int               `json:"samples"`
}

func (c ActivityCombination) key() string {
	return string(c.Activities[0]) + "+" + string(c.Activities[1])
}

// BestActivityCombinations ranks activity pairs logged on the same entry by
// the mean score of those entries.
func BestActivityCombinations(entries []model.Entry, opts AdvancedOptions) []ActivityCombination {
	opts = opts.withDefaults()
	acc := map[string]*ActivityCombination{}
	totals := map[string]float64{}
	for _, e := range entries {
		acts := uniqueSortedActivities(e.Activities)
		for i := 0; i < len(acts); i++ {
			for j := i + 1; j < len(acts); j++ {
				combo := ActivityCombination{Activities: [2]model.Activity{acts[i], acts[j]}}
				k := combo.key()
				item, ok := acc[k]
				if !ok {
					item = &combo
					acc[k] = item
				}
				item.Samples++
				totals[k] += float64(e.MoodScore)
			}
		}
	}

	out := make([]ActivityCombination, 0)
	for k, item := range acc {
		if item.Samples < opts.MinComboSamples {
			continue
		}
		item.AvgScore = totals[k] / float64(item.Samples)
		if item.AvgScore <= opts.ComboThreshold {
			continue
		}
		out = append(out, *item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgScore != out[j].AvgScore {
			return out[i].AvgScore > out[j].AvgScore
		}
		if out[i].Samples != out[j].Samples {
			return out[i].Samples > out[j].Samples
		}
		return out[i].key() < out[j].key()
	})
	if len(out) > opts.MaxCombos {
		out = out[:opts.MaxCombos]
	}
	return out
}

func uniqueSortedActivities(in []model.Activity) []model.Activity {
	seen := map[model.Activity]bool{}
	out := make([]model.Activity, 0, len(in))
	for _, a := range in {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
