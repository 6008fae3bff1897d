package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/camstitch/internal/audio"
	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
	"github.com/backmassage/camstitch/internal/ffmpeg"
	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/naming"
	"github.com/backmassage/camstitch/internal/planner"
	"github.com/backmassage/camstitch/internal/probe"
)

// Run is the top-level entry point. It collects and probes the clips,
// joins them while conditioning the face audio, composites the face video
// over the joined base, and commits the output atomically.
//
// Flow:
//  1. Validate the face video path
//  2. Collect clips, probe the face video
//  3. Lock the output, create the workspace
//  4. Concatenate ∥ Condition
//  5. Plan and run the composite pass (with retry)
//  6. Verify the partial output, rename it into place
//
// The workspace and any partial output are removed on every exit path,
// including cancellation.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	start := time.Now()
	stats := RunStats{DryRun: cfg.DryRun}

	// --- 1. Inputs ---
	if err := validateFace(cfg.Paths.FaceVideo); err != nil {
		return stats, stageErr("validate", KindInput, err)
	}
	if cfg.DryRun {
		return stats, dryRun(ctx, cfg, log, &stats)
	}

	// --- 2. Collect (read-only; nothing is written before this passes) ---
	log.Step("Joining videos...")
	clips, face, err := collectAll(ctx, cfg, log, &stats)
	if err != nil {
		return stats, err
	}

	// --- 3. Exclusive access and workspace ---
	lock, err := acquireOutputLock(cfg.Paths.OutputPath)
	if err != nil {
		return stats, stageErr("lock", KindInput, err)
	}
	defer releaseOutputLock(lock)

	ws, err := NewWorkspace(cfg.Paths.WorkDir, uuid.NewString())
	if err != nil {
		return stats, stageErr("workspace", KindExport, err)
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			log.Warn("Could not remove workspace %s: %v", ws.Dir, err)
		}
	}()
	log.Debug(log.Verbose(), "Workspace: %s", ws.Dir)

	// --- 4. Concatenate and condition concurrently ---
	var (
		base *ConcatResult
		cond *audio.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = Concatenate(gctx, cfg, log, clips, ws)
		return err
	})
	g.Go(func() error {
		var err error
		cond, err = conditionFace(gctx, cfg, log, ws)
		return err
	})
	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Strategy = base.Plan.Strategy
	stats.BaseDuration = base.Probe.Duration()

	// --- 5. Composite ---
	log.Step("Overlaying face video...")
	partial := naming.PartialOutputPath(cfg.Paths.OutputPath, ws.RunID)
	defer os.Remove(partial)

	plan, err := planner.BuildCompositePlan(cfg, planner.CompositeInputs{
		BasePath:     base.Plan.OutputPath,
		BaseDuration: stats.BaseDuration,
		BaseHasAudio: base.Probe.HasAudio(),
		FacePath:     cfg.Paths.FaceVideo,
		FaceProbe:    face,
		AudioPath:    cond.Path,
		OutputPath:   partial,
	})
	if err != nil {
		return stats, stageErr("composite", KindInput, err)
	}
	logCompositePlan(log, plan, face)

	log.Step("Writing final video...")
	stats.Retries, err = Composite(ctx, cfg, log, plan)
	if err != nil {
		return stats, err
	}

	// --- 6. Verify and commit ---
	out, err := verifyOutput(ctx, cfg, log, partial, plan.Duration, base.Probe.FrameDuration())
	if err != nil {
		return stats, err
	}
	if err := commitOutput(partial, cfg.Paths.OutputPath); err != nil {
		return stats, stageErr("commit", KindExport, err)
	}
	stats.OutputDuration = out.Duration()
	stats.OutputBytes = out.Format.Size
	if fi, err := os.Stat(cfg.Paths.OutputPath); err == nil {
		stats.OutputBytes = fi.Size()
	}

	stats.Elapsed = time.Since(start)
	log.Success("Video processing completed!")
	log.Print(SummaryTable(&stats, cfg.Paths.OutputPath))
	return stats, nil
}

// collectAll runs the collector and probes the face video.
func collectAll(ctx context.Context, cfg *config.Config, log *logging.Logger, stats *RunStats) ([]Clip, *probe.ProbeResult, error) {
	clips, skipped, err := Collect(ctx, cfg)
	for _, s := range skipped {
		log.Warn("Skip (non-numeric name): %s", filepath.Base(s))
	}
	stats.Skipped = len(skipped)
	if err != nil {
		return nil, nil, err
	}
	stats.Clips = len(clips)
	stats.InputBytes = TotalSize(clips)
	log.Info("Found %d clips in %s (%s, %s)", len(clips), cfg.Paths.InputDir,
		display.FormatSeconds(TotalDuration(clips)), display.FormatBytes(stats.InputBytes))
	for _, c := range clips {
		log.Debug(log.Verbose(), "  %d: %s %s %s fps %s", c.Index, filepath.Base(c.Path),
			c.Probe.Resolution(), display.FormatFPS(c.Probe.FrameRate()), display.FormatSeconds(c.Probe.Duration()))
	}

	face, err := probeFace(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	stats.FaceDuration = face.Duration()
	return clips, face, nil
}

func validateFace(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("face video: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("face video %s is a directory", path)
	}
	return nil
}

// probeFace requires a video stream to overlay and an audio stream to
// condition.
func probeFace(ctx context.Context, cfg *config.Config) (*probe.ProbeResult, error) {
	pr, err := probe.Probe(ctx, cfg.Tools.FFprobe, cfg.Paths.FaceVideo)
	if err != nil {
		return nil, stageErr("face", KindDecode, err)
	}
	if !pr.HasVideo() {
		return nil, stageErr("face", KindInput, fmt.Errorf("%s: %w", cfg.Paths.FaceVideo, ErrFaceNoVideo))
	}
	if !pr.HasAudio() {
		return nil, stageErr("face", KindInput, fmt.Errorf("%s: %w", cfg.Paths.FaceVideo, audio.ErrNoAudioStream))
	}
	return pr, nil
}

func conditionFace(ctx context.Context, cfg *config.Config, log *logging.Logger, ws *Workspace) (*audio.Result, error) {
	opts := audio.Options{
		Config: cfg,
		OnCommand: func(args []string) {
			log.Debug(log.Verbose(), "  %s", ffmpeg.FormatCommand(args))
		},
	}
	if log.Verbose() {
		opts.Tee = os.Stderr
	}
	log.Info("Conditioning face audio")
	res, err := audio.Condition(ctx, opts, cfg.Paths.FaceVideo, ws.Path(conditionedWAV))
	if err != nil {
		kind := KindFilter
		if errors.Is(err, audio.ErrNoAudioStream) {
			kind = KindInput
		}
		return nil, stageErr("condition", kind, err)
	}
	if res.MaxVolumeDB < -90 {
		log.Warn("Face audio is silent; leaving level unchanged")
	} else {
		log.Info("Face audio peak %.1f dBFS, gain %+.2f dB", res.MaxVolumeDB, res.GainDB)
	}
	return res, nil
}

// verifyOutput probes the finished partial file before it is committed.
func verifyOutput(ctx context.Context, cfg *config.Config, log *logging.Logger, path string, want, frame float64) (*probe.ProbeResult, error) {
	pr, err := probe.Probe(ctx, cfg.Tools.FFprobe, path)
	if err != nil {
		return nil, stageErr("verify", KindExport, err)
	}
	if !pr.HasVideo() || pr.Duration() <= 0 {
		return nil, stageErr("verify", KindExport, errors.New("output has no playable video"))
	}
	// Encoders pad to whole frames and audio packets; allow two frames.
	if got := pr.Duration(); math.Abs(got-want) > 2*frame {
		log.Warn("Output is %s long; expected %s", display.FormatSeconds(got), display.FormatSeconds(want))
	}
	return pr, nil
}

func logCompositePlan(log *logging.Logger, plan *planner.CompositePlan, face *probe.ProbeResult) {
	o := plan.Overlay
	log.Info("Face overlay %dx%d at x=%s y=%s", o.Width, o.Height, o.X, o.Y)
	if fd := face.Duration(); fd > 0 && fd < plan.Duration {
		if o.EOFAction == "repeat" {
			log.Info("Face video ends at %s; holding its last frame", display.FormatSeconds(fd))
		} else {
			log.Info("Face video ends at %s; overlay disappears after that", display.FormatSeconds(fd))
		}
	} else if fd > plan.Duration {
		log.Info("Face video is longer than the joined clips; cut at %s", display.FormatSeconds(plan.Duration))
	}
	if plan.Audio.Note != "" {
		log.Warn("%s", plan.Audio.Note)
	}
	log.Info("Base audio: %s", plan.Audio.Mode)
}

// dryRun collects, probes and plans, then logs every ffmpeg command the
// real run would execute. Nothing is written.
func dryRun(ctx context.Context, cfg *config.Config, log *logging.Logger, stats *RunStats) error {
	log.Step("Joining videos...")
	clips, face, err := collectAll(ctx, cfg, log, stats)
	if err != nil {
		return err
	}

	ws := &Workspace{RunID: "dry-run"}
	ws.Dir = filepath.Join(workParent(cfg), naming.WorkspacePrefix+ws.RunID)

	cplan, err := planner.PlanConcat(cfg, Sources(clips), ws.Path(baseFileName))
	if err != nil {
		return stageErr("concat", KindInput, err)
	}
	logConcatPlan(log, cplan)
	stats.Strategy = cplan.Strategy
	stats.BaseDuration = cplan.Duration
	log.Info("[DRY] %s", ffmpeg.FormatCommand(ffmpeg.BuildConcat(cfg, cplan, ws.Path(concatListName))))

	wav := ws.Path(conditionedWAV)
	for _, args := range audio.Commands(cfg, face, cfg.Paths.FaceVideo, wav) {
		log.Info("[DRY] %s", ffmpeg.FormatCommand(args))
	}

	log.Step("Overlaying face video...")
	partial := naming.PartialOutputPath(cfg.Paths.OutputPath, ws.RunID)
	plan, err := planner.BuildCompositePlan(cfg, planner.CompositeInputs{
		BasePath:     cplan.OutputPath,
		BaseDuration: cplan.Duration,
		BaseHasAudio: true,
		FacePath:     cfg.Paths.FaceVideo,
		FaceProbe:    face,
		AudioPath:    wav,
		OutputPath:   partial,
	})
	if err != nil {
		return stageErr("composite", KindInput, err)
	}
	logCompositePlan(log, plan, face)

	log.Step("Writing final video...")
	rs := ffmpeg.NewRetryState(plan, cfg.Strict)
	log.Info("[DRY] %s", ffmpeg.FormatCommand(ffmpeg.BuildComposite(cfg, plan, rs)))
	log.Success("[DRY] Would write %s", cfg.Paths.OutputPath)
	return nil
}

func workParent(cfg *config.Config) string {
	if cfg.Paths.WorkDir != "" {
		return cfg.Paths.WorkDir
	}
	return os.TempDir()
}

// SummaryTable renders the end-of-run report.
func SummaryTable(s *RunStats, output string) string {
	pairs := [][2]string{
		{"Output", output},
		{"Clips", fmt.Sprintf("%d", s.Clips)},
		{"Join", s.Strategy.String()},
		{"Base duration", display.FormatSeconds(s.BaseDuration)},
		{"Face duration", display.FormatSeconds(s.FaceDuration)},
		{"Output duration", display.FormatSeconds(s.OutputDuration)},
		{"Input size", display.FormatBytes(s.InputBytes)},
		{"Output size", fmt.Sprintf("%s (%d%% of input)", display.FormatBytes(s.OutputBytes), s.SizeRatio())},
		{"Retries", fmt.Sprintf("%d", s.Retries)},
		{"Elapsed", display.FormatSeconds(s.Elapsed.Seconds())},
	}
	if s.Skipped > 0 {
		pairs = append(pairs, [2]string{"Skipped files", fmt.Sprintf("%d", s.Skipped)})
	}
	if speed := s.Speed(); speed > 0 {
		pairs = append(pairs, [2]string{"Speed", fmt.Sprintf("%.2fx realtime", speed)})
	}
	return display.RenderKeyValue("Summary", pairs)
}
