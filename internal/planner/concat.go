package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/probe"
)

// Normalized audio layout of the filter strategy.
const (
	concatSampleRate = 48000
	concatLayout     = "stereo"
	defaultFrameRate = "30"
)

// ErrNoSources is returned when PlanConcat is given nothing to join.
var ErrNoSources = errors.New("no clips to concatenate")

// PlanConcat decides how to join sources into the intermediate at output.
// Stream copy is chosen when every clip matches the first one in video
// codec, dimensions, pixel format, frame rate and audio layout; any
// difference selects the filter strategy with the first clip's even-rounded
// size and frame rate as the target.
func PlanConcat(cfg *config.Config, sources []Source, output string) (*ConcatPlan, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	for _, s := range sources {
		if s.Probe == nil || !s.Probe.HasVideo() {
			return nil, fmt.Errorf("%s: no video stream", s.Path)
		}
	}

	first := sources[0].Probe
	plan := &ConcatPlan{
		Strategy:   ConcatCopy,
		Width:      first.PrimaryVideo.Width,
		Height:     first.PrimaryVideo.Height,
		FrameRate:  first.FrameRateExpr(),
		VideoCodec: cfg.Encode.IntermediateCodec,
		CRF:        cfg.Encode.IntermediateCRF,
		Preset:     cfg.Encode.IntermediatePreset,
		AudioCodec: "pcm_s16le",
		OutputPath: output,
	}
	if plan.FrameRate == "" {
		plan.FrameRate = defaultFrameRate
	}
	plan.FrameDuration = first.FrameDuration()

	for _, s := range sources {
		d := s.Probe.Duration()
		plan.Inputs = append(plan.Inputs, s.Path)
		plan.Durations = append(plan.Durations, d)
		plan.Duration += d
	}

	for i, s := range sources {
		if reason := incompatibility(first, s.Probe); reason != "" {
			plan.Strategy = ConcatFilter
			plan.Reason = fmt.Sprintf("clip %d (%s): %s", i+1, s.Path, reason)
			break
		}
	}

	if plan.Strategy == ConcatFilter {
		plan.Width = evenDown(plan.Width)
		plan.Height = evenDown(plan.Height)
		plan.FilterGraph = buildConcatGraph(plan, sources)
	}
	return plan, nil
}

// incompatibility returns why b cannot be stream-copied after a, or "".
func incompatibility(a, b *probe.ProbeResult) string {
	va, vb := a.PrimaryVideo, b.PrimaryVideo
	switch {
	case !strings.EqualFold(va.Codec, vb.Codec):
		return fmt.Sprintf("video codec %s != %s", vb.Codec, va.Codec)
	case va.Width != vb.Width || va.Height != vb.Height:
		return fmt.Sprintf("size %s != %s", b.Resolution(), a.Resolution())
	case va.PixFmt != vb.PixFmt:
		return fmt.Sprintf("pixel format %s != %s", vb.PixFmt, va.PixFmt)
	case a.FrameRateExpr() != b.FrameRateExpr():
		return fmt.Sprintf("frame rate %s != %s", b.FrameRateExpr(), a.FrameRateExpr())
	}

	// The composite stage needs an audio track on the base; a silent clip
	// must be filled with generated silence, which stream copy cannot do.
	aa, ab := a.PrimaryAudio(), b.PrimaryAudio()
	switch {
	case aa == nil || ab == nil:
		return "missing audio stream"
	case !strings.EqualFold(aa.Codec, ab.Codec):
		return fmt.Sprintf("audio codec %s != %s", ab.Codec, aa.Codec)
	case aa.SampleRate != ab.SampleRate:
		return fmt.Sprintf("sample rate %d != %d", ab.SampleRate, aa.SampleRate)
	case aa.Channels != ab.Channels:
		return fmt.Sprintf("channels %d != %d", ab.Channels, aa.Channels)
	}
	return ""
}

// buildConcatGraph renders the per-clip normalization chains followed by
// concat=n=N:v=1:a=1, producing [v] and [a].
func buildConcatGraph(plan *ConcatPlan, sources []Source) string {
	w, h := strconv.Itoa(plan.Width), strconv.Itoa(plan.Height)
	chains := make([]string, 0, 2*len(sources)+1)
	var pads strings.Builder

	for i, s := range sources {
		d := formatSeconds(plan.Durations[i])
		v := fmt.Sprintf("[%d:v]scale=%s:%s:force_original_aspect_ratio=decrease,"+
			"pad=%s:%s:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%s,format=yuv420p,"+
			"trim=duration=%s,setpts=PTS-STARTPTS[v%d]",
			i, w, h, w, h, plan.FrameRate, d, i)
		var a string
		if s.Probe.HasAudio() {
			a = fmt.Sprintf("[%d:a]aresample=%d,aformat=sample_fmts=fltp:channel_layouts=%s,"+
				"apad,atrim=end=%s,asetpts=PTS-STARTPTS[a%d]",
				i, concatSampleRate, concatLayout, d, i)
		} else {
			a = fmt.Sprintf("anullsrc=r=%d:cl=%s,atrim=duration=%s,aformat=sample_fmts=fltp[a%d]",
				concatSampleRate, concatLayout, d, i)
		}
		chains = append(chains, v, a)
		fmt.Fprintf(&pads, "[v%d][a%d]", i, i)
	}
	chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[v][a]", pads.String(), len(sources)))
	return strings.Join(chains, ";")
}

func evenDown(n int) int {
	n &^= 1
	if n < 2 {
		return 2
	}
	return n
}

// formatSeconds renders a duration for filter arguments with microsecond
// precision and no trailing zeros.
func formatSeconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', 6, 64)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}
