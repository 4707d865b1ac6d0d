package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/router"
	"github.com/spf13/cobra"
)

// DefaultContextTimeout bounds graceful shutdown.
const DefaultContextTimeout = 30

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the function over HTTP",
		Long: `Serve starts the HTTP server on server.port (or FUNCTIONS_CUSTOMHANDLER_PORT
when run as a custom handler) and blocks until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	log := app.server.Logger

	if err := app.server.StartJobs(); err != nil {
		log.Error().Err(err).Msg("failed to start job workers")
		_ = app.close(context.Background())
		return err
	}

	handlers := handler.NewHandlers(app.server, app.services)
	r := router.NewRouter(app.server, handlers)

	app.server.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := app.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
