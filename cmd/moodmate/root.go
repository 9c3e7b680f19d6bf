package moodmate

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshangamage/Moodmate/internal/app"
	"github.com/keshangamage/Moodmate/internal/config"
)

var (
	dbPath     string
	configPath string
	userFlag   string
	logLevel   string
)

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:           "moodmate",
	Short:         "moodmate tracks daily mood and explains what moves it",
	Long:          "moodmate is a local-first mood tracker that scores daily check-ins and derives insights, tips, and trends from your history.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User whose history to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
}

func loadConfig(cmd *cobra.Command) error {
	path := strings.TrimSpace(configPath)
	required := path != ""
	if path == "" {
		p, err := app.DefaultConfigPath()
		if err == nil {
			path = p
		}
	}
	loaded, err := config.Load(path, required)
	if err != nil {
		return err
	}
	cfg = loaded
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	slog.Debug("config loaded", "path", path, "driver", cfg.Storage.Driver)
	return nil
}
