package handler

import (
	"net/http"

	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
	"github.com/labstack/echo/v4"
)

// RawBody carries the untouched request body. Parsing and validation of
// the visitor payload belong to the service, which also serves Lambda and
// the CLI.
type RawBody struct {
	Body []byte
}

func (r *RawBody) BindBody(body []byte) error {
	r.Body = body
	return nil
}

func (r *RawBody) Validate() error {
	return nil
}

// VisitorHandler serves the visitor function.
type VisitorHandler struct {
	Handler
	visitorService *service.VisitorService
}

func NewVisitorHandler(s *server.Server, visitorService *service.VisitorService) *VisitorHandler {
	return &VisitorHandler{
		Handler:        NewHandler(s),
		visitorService: visitorService,
	}
}

// Greet answers "Hello {name}" and stores the visit. Rejections surface as
// 400 responses through the global error handler.
func (h *VisitorHandler) Greet(c echo.Context, req *RawBody) (string, error) {
	visit, err := h.visitorService.Visit(c.Request().Context(), req.Body)
	if err != nil {
		return "", err
	}
	return visit.Response, nil
}

// GreetHandler is the route handler for the function trigger.
func (h *VisitorHandler) GreetHandler() echo.HandlerFunc {
	return HandleText(h.Handler, h.Greet, http.StatusOK, func() *RawBody { return &RawBody{} })
}
