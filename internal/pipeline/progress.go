package pipeline

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/camstitch/internal/logging"
	"github.com/backmassage/camstitch/internal/term"
)

// progress draws an encode progress bar on stderr, measured in
// milliseconds of output. A nil *progress is valid and does nothing, which
// is what newProgress returns for verbose runs and non-TTY stderr.
type progress struct {
	bar   *progressbar.ProgressBar
	total int64
}

func newProgress(log *logging.Logger, totalSeconds float64, label string) *progress {
	if log.Verbose() || totalSeconds <= 0 || !term.IsTerminal(os.Stderr) {
		return nil
	}
	total := int64(totalSeconds * 1000)
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	return &progress{bar: bar, total: total}
}

// callback returns the function handed to ffmpeg.ExecOptions.Progress.
func (p *progress) callback() func(float64) {
	if p == nil {
		return nil
	}
	return func(sec float64) {
		_ = p.bar.Set64(min(int64(sec*1000), p.total))
	}
}

func (p *progress) done(ok bool) {
	if p == nil {
		return
	}
	if ok {
		_ = p.bar.Finish()
		return
	}
	_ = p.bar.Exit()
}
