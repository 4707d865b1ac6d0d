package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/deppfellow/visitor-function/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// handlePersistVisitorTask writes a queued visitor record through the sink.
// Returning an error makes Asynq retry the task.
func (j *JobService) handlePersistVisitorTask(ctx context.Context, t *asynq.Task) error {
	var p PersistVisitorPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal persist visitor payload: %w: %w", err, asynq.SkipRetry)
	}
	if p.ID == "" || p.Name == "" {
		return fmt.Errorf("persist visitor payload is incomplete: %w", asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskPersistVisitor).
		Str("visitor_id", p.ID).
		Logger()

	log.Debug().Msg("Processing persist visitor task")

	if err := j.sink.Save(ctx, model.Visitor{ID: p.ID, Name: p.Name}); err != nil {
		// A retried task whose first attempt did land.
		if isDuplicate(err) {
			log.Warn().Err(err).Msg("Visitor already stored, dropping task")
			return nil
		}
		log.Error().Err(err).Msg("Failed to persist visitor")
		return err
	}

	log.Info().Msg("Persisted visitor")
	return nil
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	log zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{log: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }

var _ asynq.Logger = (*asynqLogger)(nil)

func isDuplicate(err error) bool {
	return errors.Is(err, model.ErrDuplicateID) || sqlerr.ErrCode(err) == sqlerr.UniqueViolation
}
