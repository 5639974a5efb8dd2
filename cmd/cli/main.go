package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/bootgraph/internal/app"
	"github.com/vk/bootgraph/internal/cli"
	"github.com/vk/bootgraph/internal/hcl"
)

func main() {
	// Logs emitted before the configured logger exists go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// run parses args and runs one compile, plus a replay when asked. The
// listing goes to outW and logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil || shouldExit {
		return err
	}
	return app.NewApp(outW, logW, cfg, hcl.NewLoader()).Run(ctx)
}
