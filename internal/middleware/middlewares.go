package middleware

import (
	"github.com/deppfellow/visitor-function/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server so
// they are built once and shared by the router.
type Middlewares struct {
	Global          *GlobalMiddlewares
	FunctionKey     *FunctionKeyMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. Tracing degrades to a
// no-op when New Relic is not configured.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		FunctionKey:     NewFunctionKeyMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
