package planner

import (
	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/probe"
)

// ConcatStrategy selects how the clip sequence is joined.
type ConcatStrategy int

const (
	// ConcatCopy joins with the concat demuxer and stream copy. Only valid
	// when every clip shares codecs and stream parameters.
	ConcatCopy ConcatStrategy = iota
	// ConcatFilter decodes every clip, normalizes it to a common geometry,
	// frame rate and audio layout, and re-encodes through the concat filter.
	ConcatFilter
)

func (s ConcatStrategy) String() string {
	switch s {
	case ConcatCopy:
		return "stream copy"
	case ConcatFilter:
		return "filter concat"
	default:
		return "unknown"
	}
}

// Source is one probed input clip, in playback order.
type Source struct {
	Path  string
	Probe *probe.ProbeResult
}

// ConcatPlan describes how the base video is produced from the clips.
type ConcatPlan struct {
	Strategy ConcatStrategy
	Reason   string // why the filter strategy was needed; empty for copy

	Inputs    []string
	Durations []float64
	Duration  float64 // sum of clip durations

	// Target geometry (filter strategy); copy keeps the first clip's.
	Width     int
	Height    int
	FrameRate string // rational, e.g. "30000/1001"

	FrameDuration float64 // seconds per frame at the target rate
	FilterGraph   string  // filter strategy only; outputs [v] and [a]

	// Intermediate encoding (filter strategy).
	VideoCodec string
	CRF        int
	Preset     string
	AudioCodec string

	OutputPath string
}

// OverlayPlan is the scaled face-cam placement on the base frame.
type OverlayPlan struct {
	Width      int
	Height     int
	X          string // overlay filter x expression
	Y          string // overlay filter y expression
	EOFAction  string // "pass" or "repeat"
	ScaleFlags string
}

// AudioMixPlan is the audio half of the composite filtergraph.
type AudioMixPlan struct {
	Mode  config.BaseAudioMode
	Graph string // produces [a]
	Note  string // set when the configured mode had to be changed
}

// CompositeInputs gathers the artifacts the final pass consumes.
type CompositeInputs struct {
	BasePath     string
	BaseDuration float64
	BaseHasAudio bool

	FacePath  string
	FaceProbe *probe.ProbeResult

	AudioPath  string // conditioned WAV
	OutputPath string // where ffmpeg writes (the partial file)
}

// CompositePlan holds every decision for the single overlay + export pass.
// MuxQueueSize and TimestampFix seed the retry state.
type CompositePlan struct {
	BasePath   string
	FacePath   string
	AudioPath  string
	OutputPath string

	Duration float64

	Overlay OverlayPlan
	Audio   AudioMixPlan

	FilterComplex string

	VideoCodec string
	AudioCodec string
	PixFmt     string
	Preset     string

	ContainerOpts []string

	MuxQueueSize int
	TimestampFix bool
}
