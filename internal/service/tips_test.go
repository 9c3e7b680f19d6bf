package service_test

import (
	"reflect"
	"testing"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

func TestBuildTipsSections(t *testing.T) {
	tips := service.BuildTips(service.TipsInput{
		Mood:           model.MoodAnxious,
		Activities:     []model.Activity{model.ActivityExercise, model.ActivityWork},
		Weather:        model.WeatherRainy,
		EnergyLevel:    2,
		PhysicalHealth: []model.HealthTag{model.HealthHeadache},
	}, service.NewSeededPicker(1))

	if len(tips.Mood) != 3 {
		t.Fatalf("expected 3 mood tips, got %v", tips.Mood)
	}
	if len(tips.Weather) != 3 {
		t.Fatalf("expected rainy weather tips, got %v", tips.Weather)
	}
	if tips.EnergyBand != "low" || len(tips.Energy) != 4 {
		t.Fatalf("expected low energy tips, got %s %v", tips.EnergyBand, tips.Energy)
	}
	if len(tips.Health) != 3 || tips.Health[0].Label != "headache" {
		t.Fatalf("unexpected health tips %+v", tips.Health)
	}
	if len(tips.ActivityFollowUps) != 1 || tips.ActivityFollowUps[0].Label != "exercise" {
		t.Fatalf("expected one exercise follow-up (work has none), got %+v", tips.ActivityFollowUps)
	}
	labels := make([]string, 0, len(tips.MissingActivities))
	for _, m := range tips.MissingActivities {
		labels = append(labels, m.Label)
	}
	if !reflect.DeepEqual(labels, []string{"meditation", "socializing", "nature"}) {
		t.Fatalf("unexpected missing activities %v", labels)
	}
}

func TestBuildTipsOptionalSections(t *testing.T) {
	tips := service.BuildTips(service.TipsInput{Mood: "elated"}, nil)
	neutral := service.BuildTips(service.TipsInput{Mood: model.MoodNeutral}, nil)
	if !reflect.DeepEqual(tips.Mood, neutral.Mood) {
		t.Fatalf("unknown mood should fall back to neutral tips")
	}
	if tips.Weather != nil || tips.EnergyBand != "" || tips.Energy != nil || tips.Health != nil || tips.ActivityFollowUps != nil {
		t.Fatalf("expected optional sections to be empty, got %+v", tips)
	}
	if len(tips.MissingActivities) != 4 {
		t.Fatalf("expected all recommended activities suggested, got %+v", tips.MissingActivities)
	}
}

func TestBuildTipsEnergyBands(t *testing.T) {
	cases := map[int]string{1: "low", 3: "low", 4: "medium", 7: "medium", 8: "high", 10: "high"}
	for level, want := range cases {
		got := service.BuildTips(service.TipsInput{Mood: model.MoodHappy, EnergyLevel: level}, nil)
		if got.EnergyBand != want {
			t.Fatalf("energy %d: expected %s, got %s", level, want, got.EnergyBand)
		}
	}
}

func TestBuildTipsSeededIsDeterministic(t *testing.T) {
	in := service.TipsInput{
		Mood:       model.MoodHappy,
		Activities: []model.Activity{model.ActivityExercise, model.ActivityMeditation, model.ActivityHobby, model.ActivityNature, model.ActivitySocializing},
	}
	for seed := int64(0); seed < 20; seed++ {
		a := service.BuildTips(in, service.NewSeededPicker(seed))
		b := service.BuildTips(in, service.NewSeededPicker(seed))
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("seed %d produced different tips", seed)
		}
	}
}

func TestRoundRobinPickerCycles(t *testing.T) {
	p := service.NewRoundRobinPicker()
	got := []int{p.Pick(3), p.Pick(3), p.Pick(3), p.Pick(3)}
	if !reflect.DeepEqual(got, []int{0, 1, 2, 0}) {
		t.Fatalf("unexpected round robin sequence %v", got)
	}
	if p.Pick(0) != 0 {
		t.Fatalf("expected 0 for empty choice")
	}
}

func TestSeededPickerInRange(t *testing.T) {
	p := service.NewSeededPicker(99)
	for i := 0; i < 100; i++ {
		if v := p.Pick(3); v < 0 || v >= 3 {
			t.Fatalf("pick out of range: %d", v)
		}
	}
}
