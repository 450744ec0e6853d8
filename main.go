// imgpub entrypoint
//
// Builds the ML images, pushes them to GHCR and checks package visibility.
// Everything lives under internal/; this file only wires signals and the
// exit code.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"imgpub/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
