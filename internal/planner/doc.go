// Package planner turns probe results and configuration into the concrete
// decisions the ffmpeg package renders into command lines:
//
//   - PlanConcat: stream copy vs re-encoding filter concat, target geometry
//     and the per-clip normalization graph (concat.go)
//   - ScaleToHeight, AnchorPosition, PlanOverlay: face overlay geometry (overlay.go)
//   - GainDB, ConditionChain, BuildAudioMix: face audio conditioning and the
//     base/face audio graph (audio.go)
//   - BuildCompositePlan: the single-pass overlay + mix + export plan (planner.go)
//
// Planning is pure: nothing here touches the filesystem or runs a process.
package planner
