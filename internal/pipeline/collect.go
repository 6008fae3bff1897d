package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/planner"
	"github.com/backmassage/camstitch/internal/probe"
)

// probeWorkers bounds concurrent ffprobe processes.
const probeWorkers = 4

// Clip is a discovered, probed input clip.
type Clip struct {
	Index int
	Path  string // absolute
	Size  int64
	Probe *probe.ProbeResult
}

// Collect discovers the clips in cfg.Paths.InputDir and probes every one of
// them up front, so a bad file fails the run before any encoding starts.
// The returned clips keep discovery order. skipped lists non-numeric files
// ignored under the skip policy.
func Collect(ctx context.Context, cfg *config.Config) (clips []Clip, skipped []string, err error) {
	files, skipped, err := Discover(cfg.Paths.InputDir, cfg.Clips.Extension, cfg.Clips.NonNumeric)
	if err != nil {
		return nil, skipped, stageErr("collect", KindInput, err)
	}
	if len(files) == 0 {
		return nil, skipped, stageErr("collect", KindInput,
			fmt.Errorf("%w in %s (extension %s)", ErrNoClips, cfg.Paths.InputDir, cfg.Clips.Extension))
	}

	clips = make([]Clip, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeWorkers)
	for i, f := range files {
		g.Go(func() error {
			c, err := probeClip(gctx, cfg, f)
			if err != nil {
				return err
			}
			clips[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, skipped, err
	}
	return clips, skipped, nil
}

func probeClip(ctx context.Context, cfg *config.Config, f ClipFile) (Clip, error) {
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		return Clip{}, stageErr("collect", KindInput, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Clip{}, stageErr("collect", KindInput, err)
	}
	pr, err := probe.Probe(ctx, cfg.Tools.FFprobe, abs)
	if err != nil {
		return Clip{}, stageErr("collect", KindDecode, err)
	}
	if !pr.HasVideo() {
		return Clip{}, stageErr("collect", KindDecode, fmt.Errorf("%s: no video stream", filepath.Base(abs)))
	}
	if pr.Duration() <= 0 {
		return Clip{}, stageErr("collect", KindDecode, fmt.Errorf("%s: no usable duration", filepath.Base(abs)))
	}
	return Clip{Index: f.Index, Path: abs, Size: fi.Size(), Probe: pr}, nil
}

// Sources adapts clips for the planner.
func Sources(clips []Clip) []planner.Source {
	out := make([]planner.Source, len(clips))
	for i, c := range clips {
		out[i] = planner.Source{Path: c.Path, Probe: c.Probe}
	}
	return out
}

// TotalDuration sums the probed clip durations.
func TotalDuration(clips []Clip) float64 {
	var d float64
	for _, c := range clips {
		d += c.Probe.Duration()
	}
	return d
}

// TotalSize sums the clip file sizes.
func TotalSize(clips []Clip) int64 {
	var n int64
	for _, c := range clips {
		n += c.Size
	}
	return n
}
