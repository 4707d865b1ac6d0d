package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/deppfellow/visitor-function/internal/middleware"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint function that receives a bound and
// validated request payload.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and tags the transaction.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

// MIMETextPlainUTF8 is the content type of a greeting. Echo's own constant
// spells the charset in upper case.
const MIMETextPlainUTF8 = "text/plain; charset=utf-8"

// TextResponseHandler writes a string result as MIMETextPlainUTF8.
type TextResponseHandler struct {
	status int
}

func (h TextResponseHandler) Handle(c echo.Context, result any) error {
	text, _ := result.(string)
	return c.Blob(h.status, MIMETextPlainUTF8, []byte(text))
}

func (h TextResponseHandler) GetOperation() string {
	return "handler_text"
}

func (h TextResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if text, ok := result.(string); ok && txn != nil {
		txn.AddAttribute("response.size_bytes", len(text))
	}
}

// handleRequest is the shared execution pipeline: binding and validation,
// the request-scoped logger, New Relic attributes, timings and response
// writing. newReq returns a fresh payload per request.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	newReq func() Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	req := newReq()

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logFailure(&logger, err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			noticeError(txn, err)
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logFailure(&logger, err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			noticeError(txn, err)
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// logFailure picks warn for client errors and error for everything else.
func logFailure(logger *zerolog.Logger, err error) *zerolog.Event {
	if status := errs.StatusOf(err); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return logger.Warn().Err(err)
	}
	return logger.Error().Err(err)
}

// noticeError reports server-side failures only.
func noticeError(txn *newrelic.Transaction, err error) {
	if errs.StatusOf(err) < http.StatusInternalServerError {
		return
	}
	txn.NoticeError(nrpkgerrors.Wrap(err))
}

// HandleText wraps a handler returning a string into the pipeline and writes
// it as plain text.
func HandleText[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, string],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq, func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, TextResponseHandler{status: status})
	}
}
