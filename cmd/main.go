package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/k0kubun/go-ansi"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Logger:       logger,
		Output:       ansi.NewAnsiStdout(),
		Input:        os.Stdin,
		ShowProgress: true,
	})
	defer runner.Close()

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
