package moodmate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/app"
	"github.com/keshangamage/Moodmate/internal/clock"
	"github.com/keshangamage/Moodmate/internal/config"
	"github.com/keshangamage/Moodmate/internal/db"
	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
	"github.com/keshangamage/Moodmate/internal/storage"
)

// now is swapped in tests.
var now clock.Clock = clock.SystemClock{}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if p := strings.TrimSpace(cfg.Storage.SQLitePath); p != "" {
		return p, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

// session bundles what a history command needs: the local database (config
// and reminders), the configured history store, and the resolved user.
type session struct {
	db     *sql.DB
	repo   service.HistoryRepository
	userID string
}

func withSession(cmd *cobra.Command, run func(ctx context.Context, s session) error) error {
	return withDB(func(sqldb *sql.DB) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		repo, closeRepo, err := storage.Open(ctx, cfg.Storage, sqldb)
		if err != nil {
			return err
		}
		defer closeRepo()
		userID, err := resolveUser(sqldb)
		if err != nil {
			return err
		}
		return run(ctx, session{db: sqldb, repo: repo, userID: userID})
	})
}

// resolveUser prefers --user, then the config file or environment, then the
// default_user database setting.
func resolveUser(sqldb *sql.DB) (string, error) {
	if u := strings.TrimSpace(userFlag); u != "" {
		return u, nil
	}
	if u := strings.TrimSpace(cfg.User); u != "" {
		return u, nil
	}
	stored, ok, err := service.GetConfig(sqldb, service.ConfigDefaultUser)
	if err != nil {
		return "", err
	}
	if ok && stored != "" {
		return stored, nil
	}
	return config.DefaultUser, nil
}

func resolveHemisphere(sqldb *sql.DB) (service.Hemisphere, error) {
	value := strings.TrimSpace(cfg.Insights.Hemisphere)
	if value == "" {
		stored, _, err := service.GetConfig(sqldb, service.ConfigHemisphere)
		if err != nil {
			return "", err
		}
		value = stored
	}
	return service.ParseHemisphere(value)
}

// resolvePicker honours an explicit seed first. Without any seed, tips rotate
// deterministically.
func resolvePicker(cmd *cobra.Command, sqldb *sql.DB, flagSeed int64) (service.Picker, string, error) {
	if cmd.Flags().Changed("seed") {
		return service.NewSeededPicker(flagSeed), strconv.FormatInt(flagSeed, 10), nil
	}
	if cfg.Tips.Seed != nil {
		return service.NewSeededPicker(*cfg.Tips.Seed), strconv.FormatInt(*cfg.Tips.Seed, 10), nil
	}
	stored, ok, err := service.GetConfig(sqldb, service.ConfigTipSeed)
	if err != nil {
		return nil, "", err
	}
	if ok {
		seed, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("invalid stored tip_seed %q", stored)
		}
		return service.NewSeededPicker(seed), stored, nil
	}
	return service.NewRoundRobinPicker(), "", nil
}

func printJSON(cmd *cobra.Command, what string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s json: %w", what, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func joinActivities(list []model.Activity) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		parts = append(parts, string(a))
	}
	return joinOrDash(parts)
}

func joinHealth(list []model.HealthTag) string {
	parts := make([]string, 0, len(list))
	for _, h := range list {
		parts = append(parts, string(h))
	}
	return joinOrDash(parts)
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
