package middleware

import (
	"crypto/subtle"
	"time"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	// FunctionKeyHeader carries the function key.
	FunctionKeyHeader = "x-functions-key"

	// FunctionKeyQueryParam is the query parameter alternative to the header.
	FunctionKeyQueryParam = "code"

	// AuthLevelKey is the Echo context key holding the level the request passed.
	AuthLevelKey = "auth_level"
)

// FunctionKeyMiddleware enforces function.auth_level.
type FunctionKeyMiddleware struct {
	server *server.Server
}

func NewFunctionKeyMiddleware(s *server.Server) *FunctionKeyMiddleware {
	return &FunctionKeyMiddleware{
		server: s,
	}
}

// RequireFunctionKey lets every request through at the anonymous level. At
// the function level the key must arrive in the x-functions-key header or
// the code query parameter, otherwise the request is rejected with 401.
func (auth *FunctionKeyMiddleware) RequireFunctionKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		fn := auth.server.Config.Function

		if fn.AuthLevel != config.AuthLevelFunction {
			c.Set(AuthLevelKey, config.AuthLevelAnonymous)
			return next(c)
		}

		start := time.Now()

		key := c.Request().Header.Get(FunctionKeyHeader)
		if key == "" {
			key = c.QueryParam(FunctionKeyQueryParam)
		}

		if !ValidFunctionKey(fn, key) {
			GetLogger(c).Warn().
				Str("function", "RequireFunctionKey").
				Bool("key_present", key != "").
				Dur("duration", time.Since(start)).
				Msg("function key rejected")

			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		c.Set(AuthLevelKey, config.AuthLevelFunction)
		return next(c)
	}
}

// ValidFunctionKey reports whether key satisfies the function's auth level.
func ValidFunctionKey(fn config.FunctionConfig, key string) bool {
	if fn.AuthLevel != config.AuthLevelFunction {
		return true
	}
	return key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(fn.Key)) == 1
}
