// Command lambda runs the HttpExample function on AWS Lambda behind API Gateway.
//
// It uses the same configuration, store drivers and validation as the HTTP
// server; only the transport differs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/deppfellow/visitor-function/internal/repository"
	"github.com/deppfellow/visitor-function/internal/server"
	"github.com/deppfellow/visitor-function/internal/service"
)

func main() {
	h, cleanup, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(cleanup))
}

func setup() (*handler.LambdaHandler, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		loggerService.Shutdown()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// cleanup releases the server first so no new writes arrive, then the store.
	cleanup := func() {
		ctx := context.Background()
		_ = srv.Shutdown(ctx)
		_ = repos.Close(ctx)
		loggerService.Shutdown()
	}

	if err := srv.StartJobs(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to start job workers: %w", err)
	}

	services, err := service.NewServices(srv, repos)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return handler.NewLambdaHandler(srv, services.Visitor), cleanup, nil
}
