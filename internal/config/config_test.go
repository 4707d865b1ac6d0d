package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "HttpExample", cfg.Function.Name)
	assert.Equal(t, "/api/HttpExample", cfg.Function.Route())
	assert.Equal(t, []string{"POST"}, cfg.Function.Methods)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "my-database", cfg.Store.Database)
	assert.Equal(t, "my-container", cfg.Store.Container)
	assert.Equal(t, "/id", cfg.Store.PartitionKey)
	assert.True(t, cfg.Store.CreateIfNotExists)
	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "visitor-function", cfg.Observability.ServiceName)
	assert.Equal(t, cfg.Primary.Env, cfg.Observability.Environment)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VISITOR_PRIMARY__ENV", "production")
	t.Setenv("VISITOR_SERVER__PORT", "8080")
	t.Setenv("VISITOR_STORE__DRIVER", "sqlite")
	t.Setenv("VISITOR_STORE__CONTAINER", "visitors")
	t.Setenv("VISITOR_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("VISITOR_OBSERVABILITY__LOGGING__SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "visitors", cfg.Store.Container)
	assert.Equal(t, "my-database", cfg.Store.Database)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_CustomHandlerPort(t *testing.T) {
	t.Setenv("VISITOR_SERVER__PORT", "8080")
	t.Setenv(CustomHandlerPortEnv, "31337")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "31337", cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"VISITOR_STORE__DRIVER": "cassandra"},
		},
		{
			name: "function auth without key",
			env:  map[string]string{"VISITOR_FUNCTION__AUTH_LEVEL": "function"},
		},
		{
			name: "async without redis",
			env:  map[string]string{"VISITOR_STORE__ASYNC": "true"},
		},
		{
			name: "bad log level",
			env:  map[string]string{"VISITOR_OBSERVABILITY__LOGGING__LEVEL": "loud"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestStoreConfig_ConnectionString(t *testing.T) {
	t.Setenv("CosmosDbConnectionString", "mongodb://localhost:27017")

	s := Default().Store
	assert.Equal(t, "mongodb://localhost:27017", s.ConnectionString())
}

func TestFunctionConfig_Route(t *testing.T) {
	assert.Equal(t, "/HttpExample", FunctionConfig{Name: "HttpExample"}.Route())
	assert.Equal(t, "/api/v1/HttpExample", FunctionConfig{Name: "HttpExample", RoutePrefix: "/api/v1/"}.Route())
}

func TestObservabilityConfig_HasCheck(t *testing.T) {
	o := DefaultObservabilityConfig()
	assert.True(t, o.HasCheck("store"))
	assert.False(t, o.HasCheck("kafka"))

	o.HealthChecks.Enabled = false
	assert.False(t, o.HasCheck("store"))
}
