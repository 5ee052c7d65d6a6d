// Package server wires HTTP delivery for the dashboard API.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github-pulse/config"
	"github-pulse/internal/models"
)

// ReportProvider produces the aggregate report for a window.
type ReportProvider interface {
	Report(ctx context.Context, window config.Window) (*models.Report, error)
}

// Handler serves the dashboard tables as JSON. The presentation layer formats
// these rows; it never recomputes them.
type Handler struct {
	log           *zap.SugaredLogger
	svc           ReportProvider
	defaultWindow func(now time.Time) config.Window
}

// NewHandler constructs an HTTP handler with service dependencies.
func NewHandler(log *zap.SugaredLogger, svc ReportProvider, defaultWindow func(now time.Time) config.Window) *Handler {
	return &Handler{
		log:           log,
		svc:           svc,
		defaultWindow: defaultWindow,
	}
}

// Register mounts every dashboard route on the app.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/report", h.report(func(r *models.Report) any { return r }))
	api.Get("/kpis", h.report(func(r *models.Report) any { return r.KPIs }))
	api.Get("/throughput", h.report(func(r *models.Report) any { return r.Throughput }))
	api.Get("/cycle-time", h.report(func(r *models.Report) any { return r.CycleTime }))
	api.Get("/timeline", h.report(func(r *models.Report) any { return r.Timeline }))
	api.Get("/labels", h.report(func(r *models.Report) any { return r.Labels }))
	api.Get("/leaderboard", h.report(func(r *models.Report) any { return r.Leaderboard }))
	api.Get("/aging", h.report(func(r *models.Report) any { return r.Aging }))
	api.Get("/linkage", h.report(func(r *models.Report) any { return r.Linkage }))
	api.Get("/issues", h.report(func(r *models.Report) any { return r.Issues }))
	api.Get("/pulls", h.report(func(r *models.Report) any { return r.Pulls }))
}

// report builds a handler serving one view of the window's report.
func (h *Handler) report(view func(*models.Report) any) fiber.Handler {
	return func(c *fiber.Ctx) error {
		window, err := h.window(c)
		if err != nil {
			return writeError(c, err)
		}

		report, err := h.svc.Report(c.Context(), window)
		if err != nil {
			h.log.Errorw("failed to build report", "error", err.Error(), "window", window.Key())
			return writeError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(view(report))
	}
}

// window resolves the requested date range, falling back to the configured
// default when start/end query parameters are absent.
func (h *Handler) window(c *fiber.Ctx) (config.Window, error) {
	window := h.defaultWindow(time.Now())

	if raw := c.Query("start"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			return config.Window{}, err
		}
		window.Start = start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			return config.Window{}, err
		}
		// An end date means the whole of that day.
		window.End = end.Add(24*time.Hour - time.Second)
	}
	return window, nil
}
