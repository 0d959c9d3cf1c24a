package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/spvbatch/internal/app"
	"github.com/vk/spvbatch/internal/cli"
	"github.com/vk/spvbatch/internal/hcl"
)

// main is the entrypoint for the spvbatch application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stderr, os.Args[1:])
	stop()

	if exitErr := cli.AsExitError(err); exitErr != nil {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW, hcl.NewLoader())
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	return app.NewApp(outW, appConfig).Run(ctx)
}
