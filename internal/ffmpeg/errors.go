package ffmpeg

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr output into retryable
// error categories. Checked in order by [RetryState.Advance]; the first
// matching pattern whose fix has not yet been applied wins.
var (
	reMuxQueueOverflow = regexp.MustCompile(
		`Too many packets buffered for output stream`)

	reTimestampIssue = regexp.MustCompile(
		`(?i)Non-monotonous DTS|non monotonically increasing dts|` +
			`invalid, non monotonically increasing dts|` +
			`DTS .*out of order|PTS .*out of order|` +
			`pts has no value|missing PTS|Timestamps are unset`)

	reUnknownEncoder = regexp.MustCompile(
		`Unknown encoder|Encoder not found|Requested output format .* is not a suitable output format`)

	reNoSuchFilter = regexp.MustCompile(
		`No such filter: '([^']+)'`)

	reMaxVolume = regexp.MustCompile(
		`max_volume:\s*(-?inf|-?[0-9.]+) dB`)
)

// ErrNoVolumeReport is returned when volumedetect output has no max_volume line.
var ErrNoVolumeReport = errors.New("volumedetect reported no max_volume")

// MatchMuxQueueOverflow reports whether stderr contains a mux queue overflow.
func MatchMuxQueueOverflow(stderr string) bool {
	return reMuxQueueOverflow.MatchString(stderr)
}

// MatchTimestampIssue reports whether stderr contains a timestamp discontinuity.
func MatchTimestampIssue(stderr string) bool {
	return reTimestampIssue.MatchString(stderr)
}

// MatchUnknownEncoder reports whether ffmpeg rejected an encoder or muxer.
func MatchUnknownEncoder(stderr string) bool {
	return reUnknownEncoder.MatchString(stderr)
}

// MissingFilter returns the filter name from a "No such filter" error, or "".
func MissingFilter(stderr string) string {
	if m := reNoSuchFilter.FindStringSubmatch(stderr); m != nil {
		return m[1]
	}
	return ""
}

// ParseMaxVolume extracts the peak level in dBFS from volumedetect output.
// A silent stream reports -inf, returned as math.Inf(-1).
func ParseMaxVolume(stderr string) (float64, error) {
	m := reMaxVolume.FindStringSubmatch(stderr)
	if m == nil {
		return 0, ErrNoVolumeReport
	}
	switch m[1] {
	case "-inf":
		return math.Inf(-1), nil
	case "inf":
		return math.Inf(1), nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Tail returns the last n non-empty lines of stderr.
func Tail(stderr string, n int) []string {
	raw := strings.Split(strings.TrimSpace(stderr), "\n")
	lines := raw[:0]
	for _, l := range raw {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
