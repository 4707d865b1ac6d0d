package repository

import (
	"context"
	"time"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/deppfellow/visitor-function/internal/metrics"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// ObservedRepository decorates a driver with metrics, New Relic datastore
// segments and slow write logging.
type ObservedRepository struct {
	next          VisitorRepository
	log           *zerolog.Logger
	metrics       *metrics.Metrics
	slowThreshold time.Duration
	collection    string
}

func NewObservedRepository(
	next VisitorRepository,
	log *zerolog.Logger,
	m *metrics.Metrics,
	cfg *config.Config,
) *ObservedRepository {
	return &ObservedRepository{
		next:          next,
		log:           log,
		metrics:       m,
		slowThreshold: cfg.Observability.Logging.SlowQueryThreshold,
		collection:    cfg.Store.Container,
	}
}

func datastoreProduct(driver string) newrelic.DatastoreProduct {
	switch driver {
	case config.DriverMongo:
		return newrelic.DatastoreMongoDB
	case config.DriverSQLite:
		return newrelic.DatastoreSQLite
	case config.DriverS3:
		return newrelic.DatastoreProduct("S3")
	default:
		return newrelic.DatastoreProduct("Memory")
	}
}

func (r *ObservedRepository) Save(ctx context.Context, visitor model.Visitor) error {
	driver := r.next.Driver()

	// pgx queries are already traced by nrpgx5.
	if driver != config.DriverPostgres {
		segment := newrelic.DatastoreSegment{
			StartTime:  newrelic.FromContext(ctx).StartSegmentNow(),
			Product:    datastoreProduct(driver),
			Collection: r.collection,
			Operation:  "insert",
		}
		defer segment.End()
	}

	start := time.Now()
	err := r.next.Save(ctx, visitor)
	elapsed := time.Since(start)

	r.metrics.ObserveWrite(driver, err, elapsed)

	log := logger.FromContext(ctx, r.log)
	if err != nil {
		log.Error().
			Err(err).
			Str("driver", driver).
			Str("visitor_id", visitor.ID).
			Dur("duration", elapsed).
			Msg("failed to save visitor")
		return err
	}

	if r.slowThreshold > 0 && elapsed > r.slowThreshold {
		log.Warn().
			Str("driver", driver).
			Str("visitor_id", visitor.ID).
			Dur("duration", elapsed).
			Dur("threshold", r.slowThreshold).
			Msg("slow visitor write")
	}

	return nil
}

func (r *ObservedRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *ObservedRepository) Close(ctx context.Context) error {
	return r.next.Close(ctx)
}

func (r *ObservedRepository) Driver() string {
	return r.next.Driver()
}
