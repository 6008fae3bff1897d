package probe

import (
	"strconv"
	"strings"
)

// ParseRate parses an ffprobe rate such as "30000/1001", "25/1" or "29.97".
// "0/0" and malformed values report ok=false.
func ParseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	if n/d <= 0 {
		return 0, false
	}
	return n / d, true
}
