package router

import (
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the function:
// health, docs, static assets and Prometheus metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	if metrics := s.Config.Observability.Metrics; metrics.Enabled && s.Metrics != nil {
		r.GET(metrics.Path, echo.WrapHandler(s.Metrics.Handler()))
	}
}
