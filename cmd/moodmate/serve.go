package moodmate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/api"
	"github.com/keshangamage/Moodmate/internal/config"
	"github.com/keshangamage/Moodmate/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mood API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Request logs are info level; raise the CLI default unless a level was chosen.
		if logLevel == "" && cfg.Log.Level == config.Default().Log.Level {
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelInfo})))
		}
		addr := strings.TrimSpace(serveAddr)
		if addr == "" {
			addr = cfg.Server.Addr
		}
		if addr == "" {
			addr = config.DefaultServerAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withSession(cmd, func(_ context.Context, s session) error {
			hemisphere, err := resolveHemisphere(s.db)
			if err != nil {
				return err
			}
			seed, err := storedTipSeed(s)
			if err != nil {
				return err
			}
			srv := api.NewServer(api.Config{
				Addr:       addr,
				Hemisphere: hemisphere,
				TipSeed:    seed,
				AccessLog:  true,
			}, s.repo, now)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving moodmate API on http://%s (storage: %s)\n", addr, cfg.Storage.Driver)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("serve api: %w", err)
			}
			slog.Info("moodmate api stopped")
			return nil
		})
	},
}

func storedTipSeed(s session) (*int64, error) {
	if cfg.Tips.Seed != nil {
		return cfg.Tips.Seed, nil
	}
	raw, ok, err := service.GetConfig(s.db, service.ConfigTipSeed)
	if err != nil || !ok {
		return nil, err
	}
	var seed int64
	if _, err := fmt.Sscan(raw, &seed); err != nil {
		return nil, fmt.Errorf("invalid stored tip_seed %q", raw)
	}
	return &seed, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, "+config.DefaultServerAddr+")")
}
