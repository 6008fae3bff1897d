package pipeline

import (
	"context"
	"errors"
	"math"
	"os"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
	"github.com/backmassage/camstitch/internal/ffmpeg"
	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/planner"
	"github.com/backmassage/camstitch/internal/probe"
)

// Workspace file names.
const (
	baseFileName   = "base.mkv"
	concatListName = "clips.txt"
	conditionedWAV = "face.wav"
)

// ConcatResult is the intermediate base video and how it was made.
type ConcatResult struct {
	Plan  *planner.ConcatPlan
	Probe *probe.ProbeResult
}

// Concatenate joins clips, in order and with hard cuts, into the workspace
// intermediate. The output's duration is the sum of the clip durations; a
// deviation of more than one frame is logged. Any failure removes the
// partial intermediate.
func Concatenate(ctx context.Context, cfg *config.Config, log *logging.Logger, clips []Clip, ws *Workspace) (*ConcatResult, error) {
	plan, err := planner.PlanConcat(cfg, Sources(clips), ws.Path(baseFileName))
	if err != nil {
		return nil, stageErr("concat", KindInput, err)
	}
	logConcatPlan(log, plan)

	listPath := ws.Path(concatListName)
	if plan.Strategy == planner.ConcatCopy {
		if err := os.WriteFile(listPath, []byte(ffmpeg.ConcatList(plan.Inputs)), 0o600); err != nil {
			return nil, stageErr("concat", KindExport, err)
		}
	}

	args := ffmpeg.BuildConcat(cfg, plan, listPath)
	log.Debug(log.Verbose(), "  %s", ffmpeg.FormatCommand(args))

	var bar *progress
	if plan.Strategy == planner.ConcatFilter {
		bar = newProgress(log, plan.Duration, "Joining")
	}
	res := ffmpeg.Execute(ctx, args, execOptions(log, bar.callback()))
	bar.done(res.Err == nil)
	if res.Err != nil {
		os.Remove(plan.OutputPath)
		if ctx.Err() != nil {
			return nil, stageErr("concat", KindExport, ctx.Err())
		}
		logStderr(log, res.Stderr)
		kind, err := ffmpegError(res, KindDecode)
		return nil, stageErr("concat", kind, err)
	}

	pr, err := probe.Probe(ctx, cfg.Tools.FFprobe, plan.OutputPath)
	if err != nil {
		return nil, stageErr("concat", KindDecode, err)
	}
	if !pr.HasVideo() {
		return nil, stageErr("concat", KindDecode, errors.New("intermediate has no video stream"))
	}
	if got := pr.Duration(); math.Abs(got-plan.Duration) > plan.FrameDuration {
		log.Warn("Joined video is %s long; clips add up to %s",
			display.FormatSeconds(got), display.FormatSeconds(plan.Duration))
	}
	return &ConcatResult{Plan: plan, Probe: pr}, nil
}

func logConcatPlan(log *logging.Logger, plan *planner.ConcatPlan) {
	if plan.Strategy == planner.ConcatCopy {
		log.Info("Joining %d clips by stream copy (%s total)",
			len(plan.Inputs), display.FormatSeconds(plan.Duration))
		return
	}
	log.Info("Joining %d clips by re-encoding to %dx%d @ %s fps (%s total)",
		len(plan.Inputs), plan.Width, plan.Height, plan.FrameRate, display.FormatSeconds(plan.Duration))
	log.Debug(log.Verbose(), "  Re-encode needed: %s", plan.Reason)
}

// execOptions tees ffmpeg stderr to the terminal in verbose mode.
func execOptions(log *logging.Logger, onProgress func(float64)) ffmpeg.ExecOptions {
	opts := ffmpeg.ExecOptions{Progress: onProgress}
	if log.Verbose() {
		opts.Tee = os.Stderr
	}
	return opts
}

func logStderr(log *logging.Logger, stderr string) {
	lines := ffmpeg.Tail(stderr, 20)
	if len(lines) == 0 {
		return
	}
	log.Error("Last ffmpeg output:")
	for _, l := range lines {
		log.Error("  %s", l)
	}
}
