package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gorg/internal/app"
)

func main() {
	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := app.Run(ctx, os.Args, app.StdStreams())
	cancel()
	os.Exit(code)
}
