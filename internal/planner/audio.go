package planner

import (
	"fmt"
	"math"
	"strconv"

	"github.com/backmassage/camstitch/internal/config"
)

// silenceFloorDB is the peak level below which input is treated as silent
// and left unamplified.
const silenceFloorDB = -90.0

// GainDB returns the gain that brings a peak of maxVolume dBFS to
// -headroom dBFS. Silent input (-inf or below -90 dBFS) gets 0.
func GainDB(maxVolume, headroom float64) float64 {
	if math.IsNaN(maxVolume) || math.IsInf(maxVolume, -1) || maxVolume < silenceFloorDB {
		return 0
	}
	return -headroom - maxVolume
}

// ConditionChain returns the face audio filter chain in its fixed order:
// gain, low-pass, high-pass, compressor.
func ConditionChain(a config.Audio, gainDB float64) string {
	return fmt.Sprintf("volume=%sdB,lowpass=f=%d:p=%d,highpass=f=%d:p=%d,"+
		"acompressor=threshold=%sdB:ratio=%s:attack=%s:release=%s",
		strconv.FormatFloat(gainDB, 'f', 2, 64),
		a.LowpassHz, a.FilterPoles,
		a.HighpassHz, a.FilterPoles,
		num(a.CompressorThresholdDB), num(a.CompressorRatio),
		num(a.CompressorAttackMs), num(a.CompressorReleaseMs))
}

// Sidechain settings for the duck mode: the base drops roughly 18 dB while
// the face track is active.
const duckFilter = "sidechaincompress=threshold=0.05:ratio=8:attack=20:release=250"

// BuildAudioMix renders the audio half of the composite filtergraph. Input 0
// is the base, input 2 the conditioned WAV; the result is [a]. A base
// without audio forces the drop mode.
func BuildAudioMix(mode config.BaseAudioMode, baseHasAudio bool) AudioMixPlan {
	plan := AudioMixPlan{Mode: mode}
	if !baseHasAudio && mode != config.BaseAudioDrop {
		plan.Note = fmt.Sprintf("base video has no audio; using %q instead of %q", config.BaseAudioDrop, mode)
		plan.Mode = config.BaseAudioDrop
	}

	const mix = "amix=inputs=2:duration=first:dropout_transition=0:normalize=0"
	switch plan.Mode {
	case config.BaseAudioDrop:
		plan.Graph = "[2:a]apad[a]"
	case config.BaseAudioDuck:
		// sidechaincompress stops at the sidechain's EOF; pad the face
		// track so a short face clip cannot truncate the base.
		plan.Graph = "[2:a]apad,asplit=2[sc][fa];[0:a][sc]" + duckFilter + "[duck];[duck][fa]" + mix + "[a]"
	default:
		plan.Graph = "[0:a][2:a]" + mix + "[a]"
	}
	return plan
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
