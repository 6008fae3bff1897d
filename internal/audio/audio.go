// Package audio implements the face-cam audio conditioner: a peak
// normalization measured with volumedetect, then a fixed band-limit and
// compression chain, written as 16-bit PCM WAV. It depends only on the
// source file and configuration, never on other pipeline stages.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/ffmpeg"
	"github.com/backmassage/camstitch/internal/naming"
	"github.com/backmassage/camstitch/internal/planner"
	"github.com/backmassage/camstitch/internal/probe"
)

// ErrNoAudioStream is returned when the source has nothing to condition.
var ErrNoAudioStream = errors.New("no audio stream")

// Options configures a conditioning run.
type Options struct {
	Config *config.Config
	// Tee receives a live copy of ffmpeg stderr; nil captures silently.
	Tee io.Writer
	// OnCommand is called with every argv before it runs.
	OnCommand func(args []string)
}

// Result describes a conditioned file.
type Result struct {
	Path        string
	MaxVolumeDB float64 // measured source peak; -Inf for silence
	GainDB      float64 // applied normalization gain
	Chain       string  // full -af chain
	SampleRate  int
	Channels    int
}

// Condition measures src's peak, applies gain, low-pass, high-pass and
// compression, and writes the result to dst. The output keeps the source's
// sample rate and channel count. dst only appears once fully written.
func Condition(ctx context.Context, opts Options, src, dst string) (*Result, error) {
	cfg := opts.Config

	pr, err := probe.Probe(ctx, cfg.Tools.FFprobe, src)
	if err != nil {
		return nil, err
	}
	a := pr.PrimaryAudio()
	if a == nil {
		return nil, fmt.Errorf("%s: %w", src, ErrNoAudioStream)
	}

	maxVol, err := measure(ctx, opts, src)
	if err != nil {
		return nil, err
	}

	gain := planner.GainDB(maxVol, cfg.Audio.HeadroomDB)
	res := &Result{
		Path:        dst,
		MaxVolumeDB: maxVol,
		GainDB:      gain,
		Chain:       planner.ConditionChain(cfg.Audio, gain),
		SampleRate:  a.SampleRate,
		Channels:    a.Channels,
	}

	partial := naming.PartialWAVPath(dst, uuid.NewString())
	args := ffmpeg.BuildCondition(cfg, src, partial, res.Chain, res.SampleRate, res.Channels)
	if err := run(ctx, opts, args); err != nil {
		os.Remove(partial)
		return nil, fmt.Errorf("condition %s: %w", src, err)
	}
	if err := os.Rename(partial, dst); err != nil {
		os.Remove(partial)
		return nil, fmt.Errorf("condition %s: %w", src, err)
	}
	return res, nil
}

// Commands returns the argv of both passes for display in a dry run. The
// real gain is only known after measuring, so the chain shows 0 dB.
func Commands(cfg *config.Config, pr *probe.ProbeResult, src, dst string) [][]string {
	var rate, channels int
	if a := pr.PrimaryAudio(); a != nil {
		rate, channels = a.SampleRate, a.Channels
	}
	return [][]string{
		ffmpeg.BuildVolumeDetect(cfg, src),
		ffmpeg.BuildCondition(cfg, src, dst, planner.ConditionChain(cfg.Audio, 0), rate, channels),
	}
}

func measure(ctx context.Context, opts Options, src string) (float64, error) {
	args := ffmpeg.BuildVolumeDetect(opts.Config, src)
	if opts.OnCommand != nil {
		opts.OnCommand(args)
	}
	res := ffmpeg.Execute(ctx, args, ffmpeg.ExecOptions{})
	if res.Err != nil {
		return 0, fmt.Errorf("measure %s: %w", src, withStderr(res))
	}
	v, err := ffmpeg.ParseMaxVolume(res.Stderr)
	if err != nil {
		return 0, fmt.Errorf("measure %s: %w", src, err)
	}
	return v, nil
}

func run(ctx context.Context, opts Options, args []string) error {
	if opts.OnCommand != nil {
		opts.OnCommand(args)
	}
	res := ffmpeg.Execute(ctx, args, ffmpeg.ExecOptions{Tee: opts.Tee})
	if res.Err != nil {
		return withStderr(res)
	}
	return nil
}

func withStderr(res ffmpeg.ExecResult) error {
	lines := ffmpeg.Tail(res.Stderr, 3)
	if len(lines) == 0 {
		return res.Err
	}
	return fmt.Errorf("%w: %s", res.Err, strings.Join(lines, "; "))
}
