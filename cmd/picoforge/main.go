package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/picoforge/picoforge/internal/cli"
)

func main() {
	// Interrupt cancels in-flight work; completed per-file results are
	// still reported before exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
