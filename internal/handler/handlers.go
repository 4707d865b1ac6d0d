package handler

import (
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one value.
type Handlers struct {
	Visitor *VisitorHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Visitor: NewVisitorHandler(s, services.Visitor),
		Health:  NewHealthHandler(s, services.Visitor),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
