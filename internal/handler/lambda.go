package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/deppfellow/visitor-function/internal/middleware"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
)

// LambdaHandler runs the visitor function behind API Gateway (REST or
// HTTP API payload v1). Responses mirror the HTTP server: plain text on
// success, the errs.HTTPError JSON shape on failure.
type LambdaHandler struct {
	server         *server.Server
	visitorService *service.VisitorService
}

func NewLambdaHandler(s *server.Server, visitorService *service.VisitorService) *LambdaHandler {
	return &LambdaHandler{
		server:         s,
		visitorService: visitorService,
	}
}

// Handle is the function passed to lambda.Start.
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	fn := h.server.Config.Function

	log := h.server.Logger.With().
		Str("request_id", req.RequestContext.RequestID).
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Logger()
	ctx = context.WithValue(ctx, logger.ContextKey, &log)

	if !slices.Contains(fn.Methods, strings.ToUpper(req.HTTPMethod)) {
		return errorResponse(&errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusMethodNotAllowed)),
			Message: http.StatusText(http.StatusMethodNotAllowed),
			Status:  http.StatusMethodNotAllowed,
		}), nil
	}

	key := headerValue(req.Headers, middleware.FunctionKeyHeader)
	if key == "" {
		key = req.QueryStringParameters[middleware.FunctionKeyQueryParam]
	}
	if !middleware.ValidFunctionKey(fn, key) {
		log.Warn().Msg("function key rejected")
		return errorResponse(errs.NewUnauthorizedError("Unauthorized", false)), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return errorResponse(errs.NewInvalidJSONError()), nil
		}
		body = decoded
	}

	visit, err := h.visitorService.Visit(ctx, body)
	if err != nil {
		return errorResponse(toHTTPError(err)), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": MIMETextPlainUTF8},
		Body:       visit.Response,
	}, nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

func errorResponse(httpErr *errs.HTTPError) events.APIGatewayProxyResponse {
	body, err := json.Marshal(httpErr)
	if err != nil {
		body = []byte(`{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error","status":500}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: httpErr.Status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
