package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/ytgrab/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensurePipeline(); err != nil {
		return err
	}

	addr := r.config.Server.Addr()
	if port := cmd.Int("port"); port > 0 {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Opts{
		Addr:            addr,
		Pipeline:        r.pipeline,
		LinkConcurrency: r.config.Pipeline.LinkConcurrency,
		Logger:          r.logger,
	})
	return srv.ListenAndServe(ctx)
}
