package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/keshangamage/Moodmate/internal/apperrors"
	"github.com/keshangamage/Moodmate/internal/clock"
	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr       string
	Hemisphere service.Hemisphere
	TipSeed    *int64
	AccessLog  bool
}

// Server exposes the Fiber application.
type Server struct {
	app   *fiber.App
	repo  service.HistoryRepository
	clock clock.Clock
	cfg   Config
}

// NewServer wires handlers and middleware.
func NewServer(cfg Config, repo service.HistoryRepository, c clock.Clock) *Server {
	if c == nil {
		c = clock.SystemClock{}
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{Format: "${time} | ${status} | ${latency} | ${method} ${path}\n"}))
	}
	app.Use(cors.New())

	srv := &Server{app: app, repo: repo, clock: c, cfg: cfg}
	srv.registerRoutes()
	return srv
}

// App exposes the underlying fiber app for in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts listening for HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	slog.Info("moodmate api listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/v1")
	api.Post("/score", s.handleScore)

	users := api.Group("/users/:user")
	users.Get("/entries", s.handleListEntries)
	users.Post("/entries", s.handleCreateEntry)
	users.Get("/entries/:id", s.handleGetEntry)
	users.Get("/insights", s.handleInsights)
	users.Get("/tips", s.handleTips)
	users.Get("/summary", s.handleSummary)
	users.Get("/calendar", s.handleCalendar)
}

type entryPayload struct {
	Date           string   `json:"date"`
	Mood           string   `json:"mood"`
	SleepHours     float64  `json:"sleep_hours"`
	Activities     []string `json:"activities"`
	StressLevel    int      `json:"stress_level"`
	EnergyLevel    int      `json:"energy_level"`
	Weather        string   `json:"weather"`
	PhysicalHealth []string `json:"physical_health"`
	Notes          string   `json:"notes"`
}

func (s *Server) handleScore(c *fiber.Ctx) error {
	var payload entryPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	in, err := scoreInputFromPayload(payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"mood_score": service.Score(in)}})
}

func (s *Server) handleListEntries(c *fiber.Ctx) error {
	items, err := service.ListHistory(c.UserContext(), s.repo, c.Params("user"), service.ListHistoryFilter{
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items, "meta": fiber.Map{"count": len(items)}})
}

func (s *Server) handleCreateEntry(c *fiber.Ctx) error {
	var payload entryPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	entry, err := service.CreateEntry(c.UserContext(), s.repo, s.clock, service.CreateEntryInput{
		UserID:         c.Params("user"),
		Date:           payload.Date,
		Mood:           payload.Mood,
		SleepHours:     payload.SleepHours,
		Activities:     payload.Activities,
		StressLevel:    payload.StressLevel,
		EnergyLevel:    payload.EnergyLevel,
		Weather:        payload.Weather,
		PhysicalHealth: payload.PhysicalHealth,
		Notes:          payload.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": entry})
}

func (s *Server) handleGetEntry(c *fiber.Ctx) error {
	entry, err := service.FindEntry(c.UserContext(), s.repo, c.Params("user"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entry})
}

func (s *Server) handleInsights(c *fiber.Ctx) error {
	history, err := s.history(c)
	if err != nil {
		return err
	}
	tier := "basic"
	var insights []model.Insight
	if c.QueryBool("advanced", false) {
		tier = "advanced"
		insights = service.DeriveAdvancedInsights(history, service.AdvancedOptions{Hemisphere: s.cfg.Hemisphere})
	} else {
		insights = service.DeriveInsights(history)
	}
	return c.JSON(fiber.Map{
		"data": insights,
		"meta": fiber.Map{"count": len(insights), "tier": tier, "entries": len(history)},
	})
}

func (s *Server) handleTips(c *fiber.Ctx) error {
	history, err := s.history(c)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no entries logged yet")
	}
	latest := service.LatestEntry(history)

	picker := service.NewRoundRobinPicker()
	meta := fiber.Map{"entry_id": latest.ID}
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "seed must be an integer")
		}
		picker = service.NewSeededPicker(seed)
		meta["seed"] = seed
	} else if s.cfg.TipSeed != nil {
		picker = service.NewSeededPicker(*s.cfg.TipSeed)
		meta["seed"] = *s.cfg.TipSeed
	}
	tips := service.BuildTips(service.TipsInputFromEntry(latest), picker)
	return c.JSON(fiber.Map{"data": tips, "meta": meta})
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	history, err := s.history(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": service.SummarizeMood(history, s.clock.Now())})
}

func (s *Server) handleCalendar(c *fiber.Ctx) error {
	history, err := s.history(c)
	if err != nil {
		return err
	}
	year := c.QueryInt("year", s.clock.Now().Year())
	days := service.CalendarValues(history, year)
	return c.JSON(fiber.Map{"data": days, "meta": fiber.Map{"year": year, "count": len(days)}})
}

func (s *Server) history(c *fiber.Ctx) ([]model.Entry, error) {
	return service.ListHistory(c.UserContext(), s.repo, c.Params("user"), service.ListHistoryFilter{})
}

func scoreInputFromPayload(p entryPayload) (service.ScoreInput, error) {
	mood, err := service.ParseMood(p.Mood)
	if err != nil {
		return service.ScoreInput{}, err
	}
	activities, err := service.ParseActivities(p.Activities)
	if err != nil {
		return service.ScoreInput{}, err
	}
	weather, err := service.ParseWeather(p.Weather)
	if err != nil {
		return service.ScoreInput{}, err
	}
	health, err := service.ParseHealthTags(p.PhysicalHealth)
	if err != nil {
		return service.ScoreInput{}, err
	}
	return service.ScoreInput{
		Mood:           mood,
		SleepHours:     p.SleepHours,
		Activities:     activities,
		StressLevel:    p.StressLevel,
		EnergyLevel:    p.EnergyLevel,
		Weather:        weather,
		PhysicalHealth: health,
	}, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		code = fiber.StatusNotFound
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
