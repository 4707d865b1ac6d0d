package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFields(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Environment = "production"
	cfg.Logging.Level = "info"

	var buf bytes.Buffer
	log := newLogger(cfg, nil, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("name", "Ada").Msg("The function app is running.")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "visitor-function", entry["service"])
	assert.Equal(t, "production", entry["environment"])
	assert.Equal(t, "The function app is running.", entry["message"])
}

func TestNewLogger_FallbackLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "bogus"

	var buf bytes.Buffer
	log := newLogger(cfg, nil, &buf)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestLoggerService_Disabled(t *testing.T) {
	service := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, service.GetApplication())
	service.Shutdown()

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}

func TestFromContext(t *testing.T) {
	fallback := zerolog.Nop()
	assert.Same(t, &fallback, FromContext(context.Background(), &fallback))

	scoped := zerolog.Nop()
	ctx := context.WithValue(context.Background(), ContextKey, &scoped)
	assert.Same(t, &scoped, FromContext(ctx, &fallback))
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, 6, GetPgxTraceLogLevel(zerolog.TraceLevel))
	assert.Equal(t, 4, GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, 2, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, 1, GetPgxTraceLogLevel(zerolog.Disabled))
}
