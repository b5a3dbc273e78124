package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seolhw/maumlog/internal/calendar"
	"github.com/seolhw/maumlog/internal/diary"
	"github.com/seolhw/maumlog/internal/emotions"
	"github.com/seolhw/maumlog/internal/middleware"
	"github.com/seolhw/maumlog/internal/profile"
	"github.com/seolhw/maumlog/internal/wizard"
)

// RegisterRoutes builds each feature's repository/service/handler stack and
// registers its routes. This is the single place where all routes are
// aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", a.healthz)

	// Everything below is profile-scoped; the middleware resolves the
	// profile from the X-Profile-ID header or the configured default.
	// The rate limit absorbs accidental double-fire from flaky clients.
	scoped := e.Group("",
		middleware.RateLimit(120, time.Minute),
		profile.Middleware(a.Config.DefaultProfileID),
	)

	logger := slog.Default()

	// --- Emotion tags ---
	tagRepo := emotions.NewTagRepository(a.DB)
	tagService := emotions.NewTagService(tagRepo)
	emotions.RegisterRoutes(scoped, emotions.NewHandler(tagService))

	// --- Diary entries ---
	// The calendar service doubles as the diary service's cache
	// invalidator so month views never show stale dates after a write.
	entryRepo := diary.NewEntryRepository(a.DB)
	calendarService := calendar.NewService(entryRepo, a.Redis, a.Config.Diary.CalendarCacheTTL, logger)
	entryService := diary.NewEntryService(entryRepo, tagRepo, a.Config.Diary.Recreate, calendarService, logger)
	diary.RegisterRoutes(scoped, diary.NewHandler(entryService, a.Config.Diary.PageSize))

	// --- Calendar ---
	calendar.RegisterRoutes(scoped, calendar.NewHandler(calendarService))

	// --- Stepped entry form ---
	sessions := wizard.NewSessionStore(a.Redis, a.Config.Wizard.SessionTTL)
	wizard.RegisterRoutes(scoped, wizard.NewHandler(sessions, entryService))
}

// healthz verifies both backing stores answer before reporting healthy.
func (a *App) healthz(c echo.Context) error {
	ctx := c.Request().Context()

	if err := a.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
