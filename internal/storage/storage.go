// Package storage selects the history backend named in the configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/keshangamage/Moodmate/internal/config"
	"github.com/keshangamage/Moodmate/internal/service"
	"github.com/keshangamage/Moodmate/internal/storage/memory"
	"github.com/keshangamage/Moodmate/internal/storage/postgres"
	"github.com/keshangamage/Moodmate/internal/storage/redis"
	"github.com/keshangamage/Moodmate/internal/storage/sqlite"
)

// Open returns the configured repository and a func releasing any
// connection it opened. sqldb backs the sqlite driver and is not closed.
func Open(ctx context.Context, cfg config.StorageConfig, sqldb *sql.DB) (service.HistoryRepository, func() error, error) {
	noop := func() error { return nil }
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	slog.Debug("opening history store", "driver", driver)

	switch driver {
	case "", config.DriverSQLite:
		if sqldb == nil {
			return nil, noop, fmt.Errorf("sqlite driver needs an open database")
		}
		return sqlite.New(sqldb), noop, nil
	case config.DriverMemory:
		return memory.NewStore(), noop, nil
	case config.DriverRedis:
		client, err := redis.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return redis.New(client, ""), client.Close, nil
	case config.DriverPostgres:
		store, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
