package service

import (
	"context"
	"time"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/deppfellow/visitor-function/internal/metrics"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/deppfellow/visitor-function/internal/repository"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/sqlerr"
	"github.com/deppfellow/visitor-function/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Greeting returns the response text for a validated name.
func Greeting(name string) string {
	return "Hello " + name
}

// VisitorService turns a request body into a greeting and a stored visit.
type VisitorService struct {
	server   *server.Server
	visitors repository.VisitorRepository
	newID    func() string
}

func NewVisitorService(s *server.Server, visitors repository.VisitorRepository) *VisitorService {
	return &VisitorService{
		server:   s,
		visitors: visitors,
		newID:    uuid.NewString,
	}
}

// Prepare validates body and builds the visit without touching the store.
//
// Rejections are *errs.HTTPError values carrying MISSING_BODY, INVALID_JSON
// or MISSING_OR_EMPTY_NAME. The name is kept exactly as sent.
func (v *VisitorService) Prepare(body []byte) (*model.Visit, error) {
	req, err := validation.ParseVisitorRequest(body)
	if err != nil {
		return nil, err
	}

	return &model.Visit{
		Response: Greeting(req.Name),
		Record: model.Visitor{
			ID:   v.newID(),
			Name: req.Name,
		},
	}, nil
}

// Visit runs one invocation: validate, build the visit, persist the record.
//
// Invalid input never reaches the store. A store failure is returned as an
// *errs.HTTPError produced by sqlerr.HandleError and the greeting is dropped.
func (v *VisitorService) Visit(ctx context.Context, body []byte) (*model.Visit, error) {
	start := time.Now()
	log := logger.FromContext(ctx, v.server.Logger)

	log.Info().Msg("The function app is running.")

	visit, err := v.Prepare(body)
	if err != nil {
		v.logRejection(log, err)
		v.observe(err, start)
		return nil, err
	}

	if err := v.save(ctx, visit.Record); err != nil {
		v.observe(err, start)
		return nil, sqlerr.HandleError(err)
	}

	log.Info().
		Str("visitor_id", visit.Record.ID).
		Msg("visitor greeted")

	v.observe(nil, start)
	return visit, nil
}

func (v *VisitorService) save(ctx context.Context, visitor model.Visitor) error {
	if timeout := v.server.Config.Store.WriteTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}
	return v.visitors.Save(ctx, visitor)
}

func (v *VisitorService) logRejection(log *zerolog.Logger, err error) {
	code, ok := errs.IsRejection(err)
	if !ok {
		log.Warn().Err(err).Msg("request rejected")
		return
	}

	var msg string
	switch code {
	case errs.CodeMissingBody:
		msg = "request body is empty"
	case errs.CodeInvalidJSON:
		msg = "request body is not valid JSON"
	default:
		msg = "name is missing or empty"
	}
	log.Warn().Str("code", code).Msg(msg)
}

func (v *VisitorService) observe(err error, start time.Time) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if code, ok := errs.IsRejection(err); ok {
			outcome = code
		}
	}
	v.server.Metrics.ObserveRequest(outcome, time.Since(start))
}

// Ping checks the visitor store.
func (v *VisitorService) Ping(ctx context.Context) error {
	return v.visitors.Ping(ctx)
}
