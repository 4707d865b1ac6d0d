package server

import (
	"context"
	"testing"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryDriver(t *testing.T) {
	cfg := config.Default()
	log := zerolog.Nop()

	s, err := New(cfg, &log, nil)
	require.NoError(t, err)

	assert.NotNil(t, s.Metrics)
	assert.Nil(t, s.DB)
	assert.Nil(t, s.Redis)
	assert.Nil(t, s.Job)
	assert.NoError(t, s.StartJobs())
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestStart_RequiresHTTPServer(t *testing.T) {
	log := zerolog.Nop()
	s := &Server{Config: config.Default(), Logger: &log}
	assert.Error(t, s.Start())
}

func TestNew_PostgresWithoutDSN(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverPostgres
	cfg.Store.Connection = "VISITOR_TEST_UNSET_DSN"
	log := zerolog.Nop()

	_, err := New(cfg, &log, nil)
	assert.Error(t, err)
}
