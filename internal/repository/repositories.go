package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/server"
)

// ConnectTimeout bounds driver setup (connect, create container).
const ConnectTimeout = 30 * time.Second

// Repositories is a container for all repository instances.
type Repositories struct {
	Visitors VisitorRepository
}

// NewRepositories builds the configured visitor store.
//
// The driver is wrapped with instrumentation. With store.async the
// instrumented driver becomes the job sink and callers get a queue that
// enqueues instead of writing.
func NewRepositories(s *server.Server) (*Repositories, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()

	driver, err := newDriver(ctx, s)
	if err != nil {
		return nil, err
	}

	var visitors VisitorRepository = NewObservedRepository(driver, s.Logger, s.Metrics, s.Config)

	if s.Job != nil {
		s.Job.SetSink(visitors)
		visitors = NewQueueRepository(s.Job.Client, visitors)
	}

	s.Logger.Info().
		Str("driver", visitors.Driver()).
		Str("database", s.Config.Store.Database).
		Str("container", s.Config.Store.Container).
		Bool("async", s.Job != nil).
		Msg("visitor store ready")

	return &Repositories{Visitors: visitors}, nil
}

func newDriver(ctx context.Context, s *server.Server) (VisitorRepository, error) {
	store := s.Config.Store

	switch store.Driver {
	case config.DriverMemory:
		return NewMemoryRepository(), nil

	case config.DriverPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("postgres driver selected but no database pool is open")
		}
		return NewPostgresRepository(s.DB, store), nil

	case config.DriverMongo:
		s.Logger.Debug().Str("uri", redactURI(store.ConnectionString())).Msg("connecting to mongo")
		return NewMongoRepository(ctx, store)

	case config.DriverS3:
		return NewS3Repository(ctx, store, s.Config.S3)

	case config.DriverSQLite:
		return NewSQLiteRepository(ctx, store)

	default:
		return nil, fmt.Errorf("unknown store driver %q", store.Driver)
	}
}

// Close releases the store.
func (r *Repositories) Close(ctx context.Context) error {
	return r.Visitors.Close(ctx)
}
