package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidscribe/internal/services"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and maps its error to a process exit code. An
// interrupt cancels the context so in-flight ffmpeg and API calls stop.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return services.ExitCode(err)
}
