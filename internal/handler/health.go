package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/visitor-function/internal/middleware"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// pinger is anything the status endpoint can probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the function and its dependencies are reachable.
type HealthHandler struct {
	Handler
	store pinger
}

func NewHealthHandler(s *server.Server, store pinger) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		store:   store,
	}
}

// CheckHealth returns 200 when every required check passes and 503
// otherwise. The store is always required; redis only when writes go
// through the job queue.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	obs := h.server.Config.Observability

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any)
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"function":    h.server.Config.Function.Name,
		"driver":      h.server.Config.Store.Driver,
		"checks":      checks,
	}

	isHealthy := true

	if obs.HasCheck("store") {
		if !h.runCheck(c.Request().Context(), &logger, checks, "store", h.store.Ping) {
			isHealthy = false
		}
	}

	if obs.HasCheck("redis") && h.server.Redis != nil {
		ok := h.runCheck(c.Request().Context(), &logger, checks, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		if !ok && h.server.Config.Store.Async {
			isHealthy = false
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthError(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) runCheck(
	parent context.Context,
	logger *zerolog.Logger,
	checks map[string]any,
	name string,
	check func(ctx context.Context) error,
) bool {
	ctx, cancel := context.WithTimeout(parent, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	checkStart := time.Now()
	err := check(ctx)
	elapsed := time.Since(checkStart)

	if err != nil {
		checks[name] = map[string]any{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordHealthError(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return false
	}

	checks[name] = map[string]any{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}
	return true
}

func (h *HealthHandler) recordHealthError(attrs map[string]any) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	attrs["operation"] = "health_check"
	app.RecordCustomEvent("HealthCheckError", attrs)
}
