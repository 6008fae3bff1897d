package planner

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/backmassage/camstitch/internal/config"
)

// defaultMuxQueueSize seeds the retry state; raised on queue overflow.
const defaultMuxQueueSize = 4096

// BuildCompositePlan produces the plan for the single pass that overlays
// the face clip on the base, mixes audio and encodes the final output.
//
// Flow:
//  1. Face geometry and corner placement (PlanOverlay)
//  2. Base/face audio graph (BuildAudioMix)
//  3. Codecs, pixel format and container flags from config
//  4. Output length pinned to the base duration
func BuildCompositePlan(cfg *config.Config, in CompositeInputs) (*CompositePlan, error) {
	if in.BaseDuration <= 0 {
		return nil, errors.New("base video has no duration")
	}

	overlay, err := PlanOverlay(cfg, in.FaceProbe)
	if err != nil {
		return nil, err
	}
	mix := BuildAudioMix(cfg.Audio.BaseAudio, in.BaseHasAudio)

	plan := &CompositePlan{
		BasePath:      in.BasePath,
		FacePath:      in.FacePath,
		AudioPath:     in.AudioPath,
		OutputPath:    in.OutputPath,
		Duration:      in.BaseDuration,
		Overlay:       overlay,
		Audio:         mix,
		FilterComplex: overlay.Graph() + ";" + mix.Graph,
		VideoCodec:    cfg.Encode.VideoCodec,
		AudioCodec:    cfg.Encode.AudioCodec,
		PixFmt:        cfg.Encode.PixFmt,
		Preset:        cfg.Encode.Preset,
		MuxQueueSize:  defaultMuxQueueSize,
	}
	plan.ContainerOpts = ContainerOpts(in.OutputPath)
	return plan, nil
}

// ContainerOpts returns muxer flags for the output's container: faststart
// for the MP4 family, nothing otherwise.
func ContainerOpts(output string) []string {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".mp4", ".mov", ".m4v":
		return []string{"-movflags", "+faststart"}
	}
	return nil
}
