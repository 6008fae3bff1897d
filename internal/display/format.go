package display

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (B, KiB, MiB, GiB, ...).
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatSeconds renders a duration in seconds as "12.0s", "1m15.5s" or
// "1h02m05.0s". Negative and NaN values render as "n/a".
func FormatSeconds(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return "n/a"
	}
	tenths := int64(math.Round(sec * 10))
	h := tenths / 36000
	m := (tenths % 36000) / 600
	s := float64(tenths%600) / 10
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%04.1fs", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%04.1fs", m, s)
	default:
		return fmt.Sprintf("%.1fs", s)
	}
}

// FormatFPS returns a short frame rate label ("30", "29.97"), or "?" when unknown.
func FormatFPS(fps float64) string {
	if fps <= 0 {
		return "?"
	}
	if math.Abs(fps-math.Round(fps)) < 0.005 {
		return fmt.Sprintf("%d", int(math.Round(fps)))
	}
	return fmt.Sprintf("%.2f", fps)
}
