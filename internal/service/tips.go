package service

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/keshangamage/Moodmate/internal/model"
)

// Picker chooses one of n suggestions. Implementations must return a value in
// [0, n) for n > 0.
type Picker interface {
	Pick(n int) int
}

type seededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPicker returns a Picker whose sequence is fixed by seed.
func NewSeededPicker(seed int64) Picker {
	return &seededPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *seededPicker) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

type roundRobinPicker struct {
	mu   sync.Mutex
	next int
}

func NewRoundRobinPicker() Picker {
	return &roundRobinPicker{}
}

func (p *roundRobinPicker) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.next % n
	p.next++
	return idx
}

var moodTips = map[model.Mood][]string{
	model.MoodHappy: {
		"Journal about what made you happy today",
		"Share your positive energy with others",
		"Plan something fun for tomorrow",
	},
	model.MoodSad: {
		"Practice self-compassion and be gentle with yourself",
		"Reach out to a friend or family member",
		"Try a calm, soothing activity you enjoy",
	},
	model.MoodAnxious: {
		"Try deep breathing exercises: 4 seconds in, 4 seconds out",
		"Ground yourself by naming 5 things you can see",
		"Take a short walk if possible",
	},
	model.MoodAngry: {
		"Take a moment to pause before reacting",
		"Express your feelings through writing or art",
		"Try progressive muscle relaxation",
	},
	model.MoodNeutral: {
		"Reflect on what you're grateful for today",
		"Set a small goal for tomorrow",
		"Try something new to spark joy",
	},
}

var activityFollowUps = map[model.Activity][]string{
	model.ActivityExercise: {
		"Try a new workout routine tomorrow",
		"Schedule your next exercise session",
		"Remember to stretch and stay hydrated",
	},
	model.ActivityMeditation: {
		"Set a regular meditation time",
		"Try guided meditation apps",
		"Create a peaceful meditation space",
	},
	model.ActivitySocializing: {
		"Plan your next social gathering",
		"Stay connected with friends virtually",
		"Join a community group or club",
	},
	model.ActivityHobby: {
		"Set aside dedicated time for your hobbies",
		"Share your creations with others",
		"Try expanding your skills in this area",
	},
	model.ActivityNature: {
		"Plan your next outdoor adventure",
		"Start a small garden or care for plants",
		"Find new nature spots to explore",
	},
}

var weatherTips = map[model.Weather][]string{
	model.WeatherSunny: {
		"Take advantage of the sunshine with outdoor activities",
		"Get some natural vitamin D with a short walk",
		"Consider having lunch outside",
	},
	model.WeatherCloudy: {
		"Indoor activities can be just as energizing",
		"Use this calm weather for a peaceful walk",
		"Practice indoor exercises or stretching",
	},
	model.WeatherRainy: {
		"Create a cozy indoor environment",
		"Use the rain sounds for meditation",
		"Catch up on indoor hobbies or reading",
	},
	model.WeatherSnowy: {
		"Stay warm and maintain your routine indoors",
		"Try winter sports if conditions permit",
		"Use this time for creative indoor activities",
	},
	model.WeatherStormy: {
		"Focus on calming indoor activities",
		"Practice relaxation techniques during the storm",
		"Use this time for self-reflection or journaling",
	},
}

var energyTips = map[string][]string{
	"low": {
		"Take short, frequent breaks",
		"Try light stretching exercises",
		"Focus on proper hydration",
		"Consider a power nap (15-20 minutes)",
	},
	"medium": {
		"Maintain your current energy with regular movement",
		"Balance activity with rest periods",
		"Stay consistent with your routine",
	},
	"high": {
		"Channel your energy into productive activities",
		"Try more challenging exercises",
		"Use this boost for tasks requiring focus",
	},
}

var healthTips = map[model.HealthTag][]string{
	model.HealthHeadache: {
		"Take regular screen breaks",
		"Stay hydrated and consider rest",
		"Practice neck and shoulder stretches",
	},
	model.HealthFatigue: {
		"Listen to your body and rest when needed",
		"Maintain a consistent sleep schedule",
		"Consider light exercise to boost energy",
	},
	model.HealthNausea: {
		"Stay hydrated with small sips of water",
		"Try ginger tea or mint",
		"Rest in a well-ventilated space",
	},
	model.HealthPain: {
		"Practice gentle stretching if appropriate",
		"Consider relaxation techniques",
		"Apply hot or cold compress as needed",
	},
	model.HealthHealthy: {
		"Maintain your healthy habits",
		"Stay active and keep moving",
		"Focus on prevention and self-care",
	},
}

var recommendedActivities = []model.Activity{
	model.ActivityExercise,
	model.ActivityMeditation,
	model.ActivitySocializing,
	model.ActivityNature,
}

type TipsInput struct {
	Mood           model.Mood
	Activities     []model.Activity
	Weather        model.Weather
	EnergyLevel    int
	PhysicalHealth []model.HealthTag
}

func TipsInputFromEntry(e model.Entry) TipsInput {
	return TipsInput{
		Mood:           e.Mood,
		Activities:     e.Activities,
		Weather:        e.Weather,
		EnergyLevel:    e.EnergyLevel,
		PhysicalHealth: e.PhysicalHealth,
	}
}

type LabeledTip struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Tips struct {
	Mood              []string     `json:"mood"`
	Weather           []string     `json:"weather,omitempty"`
	EnergyBand        string       `json:"energy_band,omitempty"`
	Energy            []string     `json:"energy,omitempty"`
	Health            []LabeledTip `json:"health,omitempty"`
	ActivityFollowUps []LabeledTip `json:"activity_follow_ups,omitempty"`
	MissingActivities []LabeledTip `json:"missing_activities,omitempty"`
}

// BuildTips assembles personalized suggestions for one check-in. The only
// varying choice, the activity follow-up, is delegated to picker.
func BuildTips(in TipsInput, picker Picker) Tips {
	if picker == nil {
		picker = NewRoundRobinPicker()
	}
	out := Tips{}

	mood, ok := moodTips[in.Mood]
	if !ok {
		mood = moodTips[model.MoodNeutral]
	}
	out.Mood = append([]string(nil), mood...)

	if in.Weather != model.WeatherUnset {
		out.Weather = append([]string(nil), weatherTips[in.Weather]...)
	}

	if in.EnergyLevel > 0 {
		out.EnergyBand = energyBand(in.EnergyLevel)
		out.Energy = append([]string(nil), energyTips[out.EnergyBand]...)
	}

	for _, condition := range in.PhysicalHealth {
		for _, tip := range healthTips[condition] {
			out.Health = append(out.Health, LabeledTip{Label: string(condition), Text: tip})
		}
	}

	for _, a := range in.Activities {
		suggestions, ok := activityFollowUps[a]
		if !ok || len(suggestions) == 0 {
			continue
		}
		out.ActivityFollowUps = append(out.ActivityFollowUps, LabeledTip{
			Label: string(a),
			Text:  suggestions[picker.Pick(len(suggestions))],
		})
	}

	for _, a := range recommendedActivities {
		if containsActivity(in.Activities, a) {
			continue
		}
		out.MissingActivities = append(out.MissingActivities, LabeledTip{
			Label: string(a),
			Text:  fmt.Sprintf("Consider adding %s to improve your mood", a),
		})
	}
	return out
}

func energyBand(level int) string {
	switch {
	case level <= 3:
		return "low"
	case level <= 7:
		return "medium"
	default:
		return "high"
	}
}

func containsActivity(list []model.Activity, a model.Activity) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}
