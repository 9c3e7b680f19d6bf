package service

import (
	"fmt"
	"sort"

	"github.com/keshangamage/Moodmate/internal/model"
)

const (
	insightWindowSize       = 7
	lowSleepMeanHours       = 7.0
	lowEnergyMean           = 4.0
	weatherMinSamples       = 3
	weatherLowMoodMean      = 5.0
	healthRecurrenceCount   = 3
	beneficialActivityMood  = 7.0
	beneficialActivityPower = 6.0
)

// DeriveInsights evaluates the basic rules over the most recent seven entries.
// Every rule runs independently and may contribute zero or more insights.
func DeriveInsights(history []model.Entry) []model.Insight {
	insights := make([]model.Insight, 0)
	if len(history) == 0 {
		return insights
	}
	window := recentWindow(sortByDate(history), insightWindowSize)

	if avgEntries(window, func(e model.Entry) float64 { return e.SleepHours }) < lowSleepMeanHours {
		insights = append(insights, model.Insight{
			Type:     model.InsightSleep,
			Message:  "Your average sleep is below recommended levels. Consider establishing a regular sleep schedule.",
			Priority: model.PriorityHigh,
		})
	}

	if avgEntries(window, func(e model.Entry) float64 { return float64(e.EnergyLevel) }) < lowEnergyMean {
		insights = append(insights, model.Insight{
			Type:     model.InsightEnergy,
			Message:  "Your energy levels have been low. Try to get more rest and consider light exercise.",
			Priority: model.PriorityMedium,
		})
	}

	insights = append(insights, weatherInsights(window)...)
	insights = append(insights, healthInsights(window)...)

	if mood, ok := dominantMood(window); ok && (mood == model.MoodSad || mood == model.MoodAnxious) {
		insights = append(insights, model.Insight{
			Type:     model.InsightMood,
			Message:  fmt.Sprintf("You've been feeling %s frequently. Consider talking to a mental health professional.", mood),
			Priority: model.PriorityHigh,
		})
	}

	insights = append(insights, beneficialActivityInsights(window)...)
	return insights
}

func weatherInsights(window []model.Entry) []model.Insight {
	type moodTotal struct {
		total float64
		count int
	}
	acc := map[model.Weather]*moodTotal{}
	order := make([]model.Weather, 0)
	for _, e := range window {
		if e.Weather == model.WeatherUnset {
			continue
		}
		item, ok := acc[e.Weather]
		if !ok {
			item = &moodTotal{}
			acc[e.Weather] = item
			order = append(order, e.Weather)
		}
		item.total += float64(e.MoodScore)
		item.count++
	}

	out := make([]model.Insight, 0)
	for _, w := range order {
		item := acc[w]
		if item.count < weatherMinSamples {
			continue
		}
		if item.total/float64(item.count) < weatherLowMoodMean {
			out = append(out, model.Insight{
				Type:     model.InsightWeather,
				Message:  fmt.Sprintf("Your mood tends to be lower during %s weather. Plan indoor activities for these days.", w),
				Priority: model.PriorityLow,
			})
		}
	}
	return out
}

func healthInsights(window []model.Entry) []model.Insight {
	counts := map[model.HealthTag]int{}
	order := make([]model.HealthTag, 0)
	for _, e := range window {
		for _, tag := range e.PhysicalHealth {
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	out := make([]model.Insight, 0)
	for _, tag := range order {
		if tag == model.HealthHealthy || counts[tag] < healthRecurrenceCount {
			continue
		}
		out = append(out, model.Insight{
			Type:     model.InsightHealth,
			Message:  fmt.Sprintf("You've reported %s frequently. Consider consulting a healthcare provider.", tag),
			Priority: model.PriorityHigh,
		})
	}
	return out
}

// dominantMood returns the most frequent mood. Ties go to the mood that
// appears first in the window.
func dominantMood(window []model.Entry) (model.Mood, bool) {
	counts := map[model.Mood]int{}
	order := make([]model.Mood, 0)
	for _, e := range window {
		if e.Mood == "" {
			continue
		}
		if _, ok := counts[e.Mood]; !ok {
			order = append(order, e.Mood)
		}
		counts[e.Mood]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, m := range order[1:] {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best, true
}

func beneficialActivityInsights(window []model.Entry) []model.Insight {
	type impact struct {
		moodTotal   float64
		energyTotal float64
		count       int
	}
	acc := map[model.Activity]*impact{}
	order := make([]model.Activity, 0)
	for _, e := range window {
		for _, a := range e.Activities {
			item, ok := acc[a]
			if !ok {
				item = &impact{}
				acc[a] = item
				order = append(order, a)
			}
			item.moodTotal += float64(e.MoodScore)
			item.energyTotal += float64(e.EnergyLevel)
			item.count++
		}
	}

	out := make([]model.Insight, 0)
	for _, a := range order {
		item := acc[a]
		div := float64(item.count)
		if item.moodTotal/div > beneficialActivityMood && item.energyTotal/div > beneficialActivityPower {
			out = append(out, model.Insight{
				Type:     model.InsightActivity,
				Message:  fmt.Sprintf("%s seems to improve both your mood and energy levels. Try to do it more often!", a),
				Priority: model.PriorityMedium,
			})
		}
	}
	return out
}

// sortByDate returns a copy ordered by calendar day. Entries sharing a day
// keep their insertion order.
func sortByDate(history []model.Entry) []model.Entry {
	copied := make([]model.Entry, len(history))
	copy(copied, history)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Date.Before(copied[j].Date)
	})
	return copied
}

func recentWindow(entries []model.Entry, size int) []model.Entry {
	if len(entries) <= size {
		return entries
	}
	return entries[len(entries)-size:]
}

func avgEntries(entries []model.Entry, selector func(model.Entry) float64) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for i := range entries {
		sum += selector(entries[i])
	}
	return sum / float64(len(entries))
}
