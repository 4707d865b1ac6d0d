package router

import (
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/middleware"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/labstack/echo/v4"
)

// registerFunctionRoutes mounts the trigger on the configured route for the
// configured methods, behind the function key check.
func registerFunctionRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers, m *middleware.Middlewares) {
	fn := s.Config.Function

	r.Match(fn.Methods, fn.Route(), h.Visitor.GreetHandler(), m.FunctionKey.RequireFunctionKey)
}
