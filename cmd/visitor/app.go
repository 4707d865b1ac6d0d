package main

import (
	"context"
	"fmt"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/deppfellow/visitor-function/internal/repository"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
)

// application is everything a command needs, wired in dependency order.
type application struct {
	server   *server.Server
	repos    *repository.Repositories
	services *service.Services
}

func newApplication() (*application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	services, err := service.NewServices(srv, repos)
	if err != nil {
		_ = repos.Close(context.Background())
		_ = srv.Shutdown(context.Background())
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &application{server: srv, repos: repos, services: services}, nil
}

// close releases the server first so no new writes arrive, then the store.
func (a *application) close(ctx context.Context) error {
	err := a.server.Shutdown(ctx)

	if closeErr := a.repos.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}

	a.server.LoggerService.Shutdown()
	return err
}
