// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and maps the function trigger and the
// system endpoints to their handlers.
package router

import (
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/middleware"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance.
//
// Middleware order matters: the request id and New Relic transaction must
// exist before the request logger is built, and the rate limiter logs
// through that logger.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.RateLimiter(),
	)

	registerSystemRoutes(router, s, h)
	registerFunctionRoutes(router, s, h, middlewares)

	return router
}
