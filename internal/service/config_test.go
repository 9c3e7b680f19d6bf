package service_test

import (
	"errors"
	"testing"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/service"
)

func TestConfigSetGetList(t *testing.T) {
	sqldb := newTestDB(t)

	if _, ok, err := service.GetConfig(sqldb, service.ConfigHemisphere); err != nil || ok {
		t.Fatalf("expected unset hemisphere, got ok=%v err=%v", ok, err)
	}
	if err := service.SetConfig(sqldb, "Hemisphere", "south"); err != nil {
		t.Fatalf("set hemisphere: %v", err)
	}
	if err := service.SetConfig(sqldb, service.ConfigTipSeed, "42"); err != nil {
		t.Fatalf("set seed: %v", err)
	}
	if err := service.SetConfig(sqldb, service.ConfigTipSeed, "7"); err != nil {
		t.Fatalf("overwrite seed: %v", err)
	}

	v, ok, err := service.GetConfig(sqldb, service.ConfigHemisphere)
	if err != nil || !ok || v != "south" {
		t.Fatalf("unexpected hemisphere %q ok=%v err=%v", v, ok, err)
	}
	all, err := service.ListConfig(sqldb)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[service.ConfigTipSeed] != "7" {
		t.Fatalf("unexpected config %v", all)
	}
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	sqldb := newTestDB(t)
	cases := [][2]string{
		{service.ConfigHemisphere, "east"},
		{service.ConfigTipSeed, "lucky"},
		{service.ConfigDefaultUser, "  "},
		{"theme", "dark"},
	}
	for _, c := range cases {
		if err := service.SetConfig(sqldb, c[0], c[1]); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s=%q: expected invalid input, got %v", c[0], c[1], err)
		}
	}
}
