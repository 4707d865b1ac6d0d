package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/deppfellow/visitor-function/internal/handler"
	"github.com/deppfellow/visitor-function/internal/lib/utils"
	"github.com/spf13/cobra"
)

// invocation is what invoke prints: the response the HTTP trigger would send.
type invocation struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        any    `json:"body"`
}

func newInvokeCmd() *cobra.Command {
	var body string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one invocation and print the result",
		Long: `Invoke runs the function once against the configured store without starting
the HTTP server and prints the status, content type and body as JSON.

Examples:
    visitor invoke --body '{"name": "Ada"}'
    echo '{"name": "Ada"}' | visitor invoke --stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := []byte(body)
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				payload = data
			}
			return runInvoke(cmd.OutOrStdout(), payload)
		},
	}

	cmd.Flags().StringVarP(&body, "body", "b", "", "Request body")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the request body from stdin")

	return cmd
}

func runInvoke(out io.Writer, payload []byte) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
		defer cancel()
		if err := app.close(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	if err := app.server.StartJobs(); err != nil {
		return err
	}

	visit, err := app.services.Visitor.Visit(context.Background(), payload)
	if err != nil {
		var httpErr *errs.HTTPError
		if !errors.As(err, &httpErr) {
			httpErr = errs.NewInternalServerError()
		}
		return utils.PrintJSON(out, invocation{
			Status:      httpErr.Status,
			ContentType: "application/json",
			Body:        httpErr,
		})
	}

	return utils.PrintJSON(out, invocation{
		Status:      http.StatusOK,
		ContentType: handler.MIMETextPlainUTF8,
		Body:        visit.Response,
	})
}
