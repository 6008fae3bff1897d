package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/planner"
)

// ListClips collects and probes the clips and prints them in playback order
// with the join strategy a run would use. Nothing is written.
func ListClips(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	clips, skipped, err := Collect(ctx, cfg)
	for _, s := range skipped {
		log.Warn("Skip (non-numeric name): %s", filepath.Base(s))
	}
	if err != nil {
		return err
	}

	log.Print(ClipTable(clips))

	plan, err := planner.PlanConcat(cfg, Sources(clips), "")
	if err != nil {
		return stageErr("concat", KindInput, err)
	}
	log.Info("%d clips, %s, %s", len(clips),
		display.FormatSeconds(plan.Duration), display.FormatBytes(TotalSize(clips)))
	if plan.Strategy == planner.ConcatCopy {
		log.Success("Join: %s (all clips share codec, size, frame rate and audio layout)", plan.Strategy)
	} else {
		log.Warn("Join: %s to %dx%d @ %s fps; %s", plan.Strategy, plan.Width, plan.Height, plan.FrameRate, plan.Reason)
	}
	return nil
}

// ClipTable renders one row per clip with a totals footer. Numeric columns
// right-align from their contents.
func ClipTable(clips []Clip) string {
	t := display.Table{
		Headers: []string{"#", "File", "Resolution", "FPS", "Video", "Audio", "Duration", "Size"},
		Rows:    make([][]string, 0, len(clips)),
		Footer: []string{
			"", "total", "", "", "", "",
			display.FormatSeconds(TotalDuration(clips)),
			display.FormatBytes(TotalSize(clips)),
		},
	}
	for _, c := range clips {
		audio := "none"
		if a := c.Probe.PrimaryAudio(); a != nil {
			audio = fmt.Sprintf("%s %d Hz %dch", a.Codec, a.SampleRate, a.Channels)
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", c.Index),
			filepath.Base(c.Path),
			c.Probe.Resolution(),
			display.FormatFPS(c.Probe.FrameRate()),
			c.Probe.PrimaryVideo.Codec,
			audio,
			display.FormatSeconds(c.Probe.Duration()),
			display.FormatBytes(c.Size),
		})
	}
	return t.Render()
}
