package ffmpeg

import (
	"strconv"
	"strings"
)

// ParseProgressLine parses one line of ffmpeg's -progress output and
// returns the encoded position in seconds for out_time_us / out_time_ms
// lines (both are microseconds). Other keys and "N/A" report ok=false.
func ParseProgressLine(line string) (float64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return float64(us) / 1e6, true
	}
	return 0, false
}
