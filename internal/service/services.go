// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives the raw
// request body from a transport, validates it, builds the greeting and the
// visitor record, and hands the record to the repository.
package service

import (
	"github.com/deppfellow/visitor-function/internal/lib/job"
	"github.com/deppfellow/visitor-function/internal/repository"
	"github.com/deppfellow/visitor-function/internal/server"
)

type Services struct {
	Visitor *VisitorService
	Job     *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Visitor: NewVisitorService(s, repos.Visitors),
		Job:     s.Job,
	}, nil
}
