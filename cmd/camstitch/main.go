// Command camstitch joins numbered screen recordings into one video and
// overlays a face-cam clip with conditioned audio in the corner.
//
// It loads defaults, the optional TOML file and flags, validates them, and
// runs either the pipeline or one of the utility subcommands (check, clips,
// config).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel on SIGINT/SIGTERM; the pipeline removes its workspace and any
	// partial output before returning.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "camstitch: %v\n", err)
		}
		return 1
	}
	return 0
}
