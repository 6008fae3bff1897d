package pipeline

import (
	"context"
	"os"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/ffmpeg"
	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/planner"
)

// Composite runs the single overlay + mix + encode pass described by plan,
// writing plan.OutputPath. Known ffmpeg failures are retried with one fix
// per attempt unless cfg.Strict is set. It returns the number of retries
// performed. A failed attempt never leaves plan.OutputPath behind.
func Composite(ctx context.Context, cfg *config.Config, log *logging.Logger, plan *planner.CompositePlan) (int, error) {
	rs := ffmpeg.NewRetryState(plan, cfg.Strict)
	retries := 0

	for {
		args := ffmpeg.BuildComposite(cfg, plan, rs)
		log.Debug(log.Verbose(), "  %s", ffmpeg.FormatCommand(args))

		bar := newProgress(log, plan.Duration, "Writing")
		res := ffmpeg.Execute(ctx, args, execOptions(log, bar.callback()))
		bar.done(res.Err == nil)
		if res.Err == nil {
			return retries, nil
		}
		os.Remove(plan.OutputPath)

		// Stop retrying if the context has been cancelled (e.g. SIGINT).
		if ctx.Err() != nil {
			log.Warn("Interrupted, aborting retries")
			return retries, stageErr("composite", KindExport, ctx.Err())
		}

		action := rs.Advance(res.Stderr)
		if action == ffmpeg.RetryNone {
			if cfg.Strict {
				log.Error("ffmpeg failed (strict mode, no retry)")
			} else {
				log.Error("ffmpeg failed (no applicable retry)")
			}
			logStderr(log, res.Stderr)
			kind, err := ffmpegError(res, KindExport)
			return retries, stageErr("composite", kind, err)
		}

		retries++
		log.Warn("Retry %d: %s", retries, action)
	}
}
