package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridfolio/internal/platform/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API used by the web front-end.

Every browser gets a session cookie and a layout of its own, stored as
"session:<id>" in the storage backend. New sessions start from a copy of
the layout selected with --layout. Idle sessions are dropped from memory
after server.idle_timeout; their layouts stay in storage.

Examples:
  gridfolio serve                      # Listen on server.http_addr
  gridfolio serve --addr :9000         # Listen on port 9000
  gridfolio serve --driver redis       # Keep session layouts in Redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.HTTPAddr = addr
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.http_addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	logger := loggerFromContext(ctx)

	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(a.cfg, backend, web.WithLogger(logger.WithPrefix("http")))
	defer srv.Close()

	fmt.Printf("Serving gridfolio API on %s\n", a.cfg.Server.HTTPAddr)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "err", err)
		return err
	}
	return nil
}
