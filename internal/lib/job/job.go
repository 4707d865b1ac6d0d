// Package job provides background job processing using Asynq.
//
// When store.async is on, the function enqueues a persist task instead of
// writing the visitor record inline, and the worker started here performs
// the write through the registered Sink:
//   - the repository layer enqueues tasks using asynq.Client.
//   - the asynq.Server runs workers that consume them.
package job

import (
	"context"
	"errors"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Sink is where queued visitor records are finally written.
type Sink interface {
	Save(ctx context.Context, visitor model.Visitor) error
}

// ErrNoSink is returned by Start when no sink was registered.
var ErrNoSink = errors.New("job: no visitor sink registered")

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server *asynq.Server
	logger *zerolog.Logger
	sink   Sink
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give the "critical" queue the larger worker share; persist
// tasks go there since each one is a visit the client was already told about.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisAddr := cfg.Redis.Address

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisAddr,
	})

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// SetSink registers the repository queued records are written to. It must
// be called before Start.
func (j *JobService) SetSink(sink Sink) {
	j.sink = sink
}

// Start registers task handlers and starts the worker server. It does not block.
func (j *JobService) Start() error {
	if j.sink == nil {
		return ErrNoSink
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPersistVisitor, j.handlePersistVisitorTask)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	return nil
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	j.Client.Close()
}
