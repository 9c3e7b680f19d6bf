package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/storage/redis"
)

func newTestStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.New(client, "test"), mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	recorded := time.Date(2024, 6, 3, 8, 30, 0, 0, time.Local)
	in := model.Entry{
		ID:             "e1",
		UserID:         "alice",
		Date:           time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local),
		RecordedAt:     recorded,
		Mood:           model.MoodHappy,
		SleepHours:     8,
		Activities:     []model.Activity{model.ActivityExercise, model.ActivityNature},
		StressLevel:    2,
		EnergyLevel:    8,
		Weather:        model.WeatherSunny,
		PhysicalHealth: []model.HealthTag{model.HealthHealthy},
		MoodScore:      10,
	}
	if err := store.AppendEntry(ctx, "alice", in); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendEntry(ctx, "alice", model.Entry{ID: "e2", Date: in.Date.AddDate(0, 0, 1), Mood: model.MoodSad, MoodScore: 3}); err != nil {
		t.Fatalf("append second: %v", err)
	}

	if n, err := mr.List("test:history:alice"); err != nil || len(n) != 2 {
		t.Fatalf("expected 2 list items, got %v (%v)", n, err)
	}

	got, err := store.LoadHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	first := got[0]
	if first.ID != "e1" || first.MoodScore != 10 || first.DateString() != "2024-06-03" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if !first.RecordedAt.Equal(recorded) {
		t.Fatalf("recorded_at mismatch: %v vs %v", first.RecordedAt, recorded)
	}
	if len(first.Activities) != 2 || first.Weather != model.WeatherSunny {
		t.Fatalf("tags not preserved: %+v", first)
	}
}

func TestRedisRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	e := model.Entry{ID: "dup", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), Mood: model.MoodNeutral, MoodScore: 5}
	if err := store.AppendEntry(ctx, "alice", e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendEntry(ctx, "alice", e); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestRedisFailedPushDoesNotReserveID(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	if err := mr.Set("test:history:alice", "not a list"); err != nil {
		t.Fatalf("seed wrong type: %v", err)
	}
	e := model.Entry{ID: "retry-me", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), Mood: model.MoodNeutral, MoodScore: 5}
	if err := store.AppendEntry(ctx, "alice", e); err == nil {
		t.Fatalf("expected push onto a string key to fail")
	}
	if ok, _ := mr.IsMember("test:entry_ids", "retry-me"); ok {
		t.Fatalf("id reserved by a failed append")
	}

	mr.Del("test:history:alice")
	if err := store.AppendEntry(ctx, "alice", e); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	got, err := store.LoadHistory(ctx, "alice")
	if err != nil || len(got) != 1 || got[0].ID != "retry-me" {
		t.Fatalf("unexpected history after retry: %v %+v", err, got)
	}
}

func TestRedisEmptyHistory(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.LoadHistory(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}
