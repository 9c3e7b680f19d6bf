package service_test

import (
	"strings"
	"testing"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

func insightsOfType(insights []model.Insight, typ model.InsightType) []model.Insight {
	out := make([]model.Insight, 0)
	for _, in := range insights {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}

func TestDeriveInsightsEmptyHistory(t *testing.T) {
	got := service.DeriveInsights(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	adv := service.DeriveAdvancedInsights(nil, service.DefaultAdvancedOptions())
	if adv == nil || len(adv) != 0 {
		t.Fatalf("expected empty advanced insights, got %#v", adv)
	}
}

func TestDeriveInsightsSleepThreshold(t *testing.T) {
	low := series(t, "2024-03-01", 7, func(i int, e *model.Entry) { e.SleepHours = 6.99 })
	if got := insightsOfType(service.DeriveInsights(low), model.InsightSleep); len(got) != 1 || got[0].Priority != model.PriorityHigh {
		t.Fatalf("expected one high-priority sleep insight at 6.99h, got %+v", got)
	}
	enough := series(t, "2024-03-01", 7, func(i int, e *model.Entry) { e.SleepHours = 7.0 })
	if got := insightsOfType(service.DeriveInsights(enough), model.InsightSleep); len(got) != 0 {
		t.Fatalf("expected no sleep insight at 7.00h, got %+v", got)
	}
}

func TestDeriveInsightsOnlyUsesLastSevenEntries(t *testing.T) {
	history := series(t, "2024-03-01", 10, func(i int, e *model.Entry) {
		if i < 3 {
			e.SleepHours = 2
			e.EnergyLevel = 1
		}
	})
	got := service.DeriveInsights(history)
	if len(insightsOfType(got, model.InsightSleep)) != 0 || len(insightsOfType(got, model.InsightEnergy)) != 0 {
		t.Fatalf("older entries leaked into the window: %+v", got)
	}
}

func TestDeriveInsightsLowEnergy(t *testing.T) {
	history := series(t, "2024-03-01", 5, func(i int, e *model.Entry) { e.EnergyLevel = 3 })
	got := insightsOfType(service.DeriveInsights(history), model.InsightEnergy)
	if len(got) != 1 || got[0].Priority != model.PriorityMedium {
		t.Fatalf("expected one medium energy insight, got %+v", got)
	}
}

func TestDeriveInsightsWeatherNeedsThreeSamples(t *testing.T) {
	two := series(t, "2024-03-01", 4, func(i int, e *model.Entry) {
		if i < 2 {
			e.Weather = model.WeatherRainy
			e.MoodScore = 2
		}
	})
	if got := insightsOfType(service.DeriveInsights(two), model.InsightWeather); len(got) != 0 {
		t.Fatalf("expected no weather insight from two samples, got %+v", got)
	}

	three := series(t, "2024-03-01", 4, func(i int, e *model.Entry) {
		if i < 3 {
			e.Weather = model.WeatherRainy
			e.MoodScore = 3
		}
	})
	got := insightsOfType(service.DeriveInsights(three), model.InsightWeather)
	if len(got) != 1 || got[0].Priority != model.PriorityLow || !strings.Contains(got[0].Message, "rainy") {
		t.Fatalf("expected one low rainy insight, got %+v", got)
	}
}

func TestDeriveInsightsRecurringHealthIssue(t *testing.T) {
	history := series(t, "2024-03-01", 4, func(i int, e *model.Entry) {
		e.PhysicalHealth = []model.HealthTag{model.HealthHealthy}
		if i > 0 {
			e.PhysicalHealth = append(e.PhysicalHealth, model.HealthHeadache)
		}
	})
	got := insightsOfType(service.DeriveInsights(history), model.InsightHealth)
	if len(got) != 1 || !strings.Contains(got[0].Message, "headache") {
		t.Fatalf("expected only a headache insight, got %+v", got)
	}
}

func TestDeriveInsightsDominantAnxiousMood(t *testing.T) {
	history := series(t, "2024-03-01", 7, func(i int, e *model.Entry) { e.Mood = model.MoodAnxious })
	got := insightsOfType(service.DeriveInsights(history), model.InsightMood)
	if len(got) != 1 || got[0].Priority != model.PriorityHigh {
		t.Fatalf("expected one high mood insight, got %+v", got)
	}
	if !strings.Contains(got[0].Message, "anxious") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
}

func TestDeriveInsightsDominantHappyMoodIsSilent(t *testing.T) {
	history := series(t, "2024-03-01", 7, func(i int, e *model.Entry) { e.Mood = model.MoodHappy })
	if got := insightsOfType(service.DeriveInsights(history), model.InsightMood); len(got) != 0 {
		t.Fatalf("expected no mood insight for happy history, got %+v", got)
	}
}

func TestDeriveInsightsDominantMoodTieGoesToFirstSeen(t *testing.T) {
	moodsOf := func(moods ...model.Mood) []model.Entry {
		return series(t, "2024-03-01", len(moods), func(i int, e *model.Entry) { e.Mood = moods[i] })
	}

	sadFirst := moodsOf(model.MoodSad, model.MoodHappy, model.MoodHappy, model.MoodSad)
	got := insightsOfType(service.DeriveInsights(sadFirst), model.InsightMood)
	if len(got) != 1 || !strings.Contains(got[0].Message, "sad") {
		t.Fatalf("expected sad to win the tie, got %+v", got)
	}

	happyFirst := moodsOf(model.MoodHappy, model.MoodSad, model.MoodSad, model.MoodHappy)
	if got := insightsOfType(service.DeriveInsights(happyFirst), model.InsightMood); len(got) != 0 {
		t.Fatalf("expected happy to win the tie silently, got %+v", got)
	}
}

func TestDeriveInsightsBeneficialActivity(t *testing.T) {
	scores := []int{9, 8, 9, 9}
	energy := []int{7, 8, 7, 7}
	history := series(t, "2024-03-01", 4, func(i int, e *model.Entry) {
		e.Activities = []model.Activity{model.ActivityExercise}
		e.MoodScore = scores[i]
		e.EnergyLevel = energy[i]
	})
	got := insightsOfType(service.DeriveInsights(history), model.InsightActivity)
	if len(got) != 1 || !strings.HasPrefix(got[0].Message, "exercise") {
		t.Fatalf("expected exercise insight, got %+v", got)
	}
}

func TestDeriveInsightsDoesNotMutateInput(t *testing.T) {
	history := []model.Entry{
		scored(t, "2024-03-03", model.MoodSad, 3),
		scored(t, "2024-03-01", model.MoodHappy, 8),
		scored(t, "2024-03-02", model.MoodNeutral, 5),
	}
	before := []string{history[0].ID, history[1].ID, history[2].ID}
	_ = service.DeriveInsights(history)
	_ = service.DeriveAdvancedInsights(history, service.DefaultAdvancedOptions())
	_ = service.SummarizeMood(history, day(t, "2024-03-05"))
	for i := range history {
		if history[i].ID != before[i] {
			t.Fatalf("input reordered at %d: %s != %s", i, history[i].ID, before[i])
		}
	}
}
