package planner

import (
	"fmt"
	"strconv"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/probe"
)

// ScaleToHeight returns the size of a w x h frame scaled to target height
// with its aspect ratio kept. The width is truncated and never below 1.
func ScaleToHeight(w, h, target int) (int, int) {
	if w <= 0 || h <= 0 || target <= 0 {
		return max(target, 1), max(target, 1)
	}
	sw := int(int64(target) * int64(w) / int64(h))
	return max(sw, 1), target
}

// AnchorPosition returns the overlay filter x/y expressions that pin the
// overlay to anchor, inset by margin pixels from both adjacent edges.
func AnchorPosition(anchor config.Anchor, margin int) (string, string) {
	m := strconv.Itoa(margin)
	left := m
	right := "main_w-overlay_w-" + m
	top := m
	bottom := "main_h-overlay_h-" + m

	switch anchor {
	case config.AnchorTopLeft:
		return left, top
	case config.AnchorTopRight:
		return right, top
	case config.AnchorBottomLeft:
		return left, bottom
	default:
		return right, bottom
	}
}

// PlanOverlay sizes and places the face clip according to cfg.Overlay.
func PlanOverlay(cfg *config.Config, face *probe.ProbeResult) (OverlayPlan, error) {
	if face == nil || !face.HasVideo() {
		return OverlayPlan{}, fmt.Errorf("face video has no video stream")
	}
	v := face.PrimaryVideo
	w, h := ScaleToHeight(v.Width, v.Height, cfg.Overlay.Height)
	x, y := AnchorPosition(cfg.Overlay.Anchor, cfg.Overlay.Margin)

	eof := "pass"
	if cfg.Overlay.Tail == config.TailHold {
		eof = "repeat"
	}
	flags := cfg.Overlay.ScaleFlags
	if flags == "" {
		flags = "bicubic"
	}
	return OverlayPlan{
		Width:      w,
		Height:     h,
		X:          x,
		Y:          y,
		EOFAction:  eof,
		ScaleFlags: flags,
	}, nil
}

// Graph renders the video half of the composite filtergraph: input 0 is the
// base, input 1 the face clip; the result is [v].
func (o OverlayPlan) Graph() string {
	return fmt.Sprintf("[1:v]scale=%d:%d:flags=%s,setsar=1[face];"+
		"[0:v][face]overlay=x=%s:y=%s:eof_action=%s[v]",
		o.Width, o.Height, o.ScaleFlags, o.X, o.Y, o.EOFAction)
}
