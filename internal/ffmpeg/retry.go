package ffmpeg

import "github.com/backmassage/camstitch/internal/planner"

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone          RetryAction = iota
	RetryIncreaseMux               // Raise max_muxing_queue_size to 16384.
	RetryFixTimestamps             // Regenerate PTS with +genpts.
)

func (a RetryAction) String() string {
	switch a {
	case RetryIncreaseMux:
		return "increase mux queue"
	case RetryFixTimestamps:
		return "fix timestamps"
	default:
		return "none"
	}
}

const (
	maxAttempts      = 3
	muxQueueEscalate = 16384
)

// RetryState tracks which fallback fixes have been applied across attempts
// of the composite pass.
type RetryState struct {
	Attempt     int
	MaxAttempts int

	MuxQueueSize int
	TimestampFix bool
}

// NewRetryState initializes a RetryState from the plan's initial values.
// strict disables every fallback: the first failure is final.
func NewRetryState(plan *planner.CompositePlan, strict bool) *RetryState {
	rs := &RetryState{
		MaxAttempts:  maxAttempts,
		MuxQueueSize: plan.MuxQueueSize,
		TimestampFix: plan.TimestampFix,
	}
	if strict {
		rs.MaxAttempts = 1
	}
	return rs
}

// Advance inspects stderr from a failed ffmpeg run, finds the first matching
// error pattern whose fix has not yet been applied, applies that fix, and
// returns the action taken. Returns RetryNone when no fixable pattern matches
// or the attempt limit is reached.
//
// Pattern evaluation order: mux queue → timestamp.
// Only one fix is applied per call (one fix per retry attempt).
func (s *RetryState) Advance(stderr string) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}

	if s.MuxQueueSize < muxQueueEscalate && MatchMuxQueueOverflow(stderr) {
		s.MuxQueueSize = muxQueueEscalate
		return RetryIncreaseMux
	}
	if !s.TimestampFix && MatchTimestampIssue(stderr) {
		s.TimestampFix = true
		return RetryFixTimestamps
	}

	return RetryNone
}
