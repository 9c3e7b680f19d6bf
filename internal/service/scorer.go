package service

import (
	"math"

	"github.com/keshangamage/Moodmate/internal/model"
)

const (
	scoreBase       = 5.0
	defaultLevel    = 5
	minScore        = 1
	maxScore        = 10
	shortSleepHours = 6.0
	longSleepHours  = 8.0
)

var moodDeltas = map[model.Mood]float64{
	model.MoodHappy:   2,
	model.MoodNeutral: 0,
	model.MoodSad:     -2,
	model.MoodAnxious: -1,
	model.MoodAngry:   -1.5,
}

var weatherDeltas = map[model.Weather]float64{
	model.WeatherSunny:  0.5,
	model.WeatherCloudy: 0,
	model.WeatherRainy:  -0.2,
	model.WeatherSnowy:  0.3,
	model.WeatherStormy: -0.4,
}

var positiveActivities = map[model.Activity]bool{
	model.ActivityExercise:    true,
	model.ActivityMeditation:  true,
	model.ActivitySocializing: true,
	model.ActivityHobby:       true,
	model.ActivityNature:      true,
}

// ScoreInput is the raw data for one day. Zero StressLevel and EnergyLevel
// mean "not provided" and default to 5.
type ScoreInput struct {
	Mood           model.Mood
	SleepHours     float64
	Activities     []model.Activity
	StressLevel    int
	EnergyLevel    int
	Weather        model.Weather
	PhysicalHealth []model.HealthTag
}

func ScoreInputFromEntry(e model.Entry) ScoreInput {
	return ScoreInput{
		Mood:           e.Mood,
		SleepHours:     e.SleepHours,
		Activities:     e.Activities,
		StressLevel:    e.StressLevel,
		EnergyLevel:    e.EnergyLevel,
		Weather:        e.Weather,
		PhysicalHealth: e.PhysicalHealth,
	}
}

// Score maps one day's inputs to a mood score in [1, 10]. Inputs are not
// range-checked; only the result is clamped.
func Score(in ScoreInput) int {
	stress := in.StressLevel
	if stress == 0 {
		stress = defaultLevel
	}
	energy := in.EnergyLevel
	if energy == 0 {
		energy = defaultLevel
	}

	sum := 0.0
	switch {
	case in.SleepHours < shortSleepHours:
		sum--
	case in.SleepHours >= longSleepHours:
		sum++
	}
	sum += moodDeltas[in.Mood]
	for _, a := range in.Activities {
		if positiveActivities[a] {
			sum += 0.5
		}
	}
	sum += float64(defaultLevel-stress) * 0.4
	sum += float64(energy-defaultLevel) * 0.3
	sum += weatherDeltas[in.Weather]
	for _, h := range in.PhysicalHealth {
		if h == model.HealthHealthy {
			sum += 0.5
			continue
		}
		sum -= 0.3
	}

	return clampScore(roundHalfUp(scoreBase + sum))
}

// roundHalfUp rounds .5 towards +Inf. The epsilon absorbs float noise from
// the 0.3/0.4 weights so 6.5 never lands on 6.4999999.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5 + 1e-9))
}

func clampScore(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
