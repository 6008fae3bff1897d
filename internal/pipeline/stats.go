package pipeline

import (
	"time"

	"github.com/backmassage/camstitch/internal/planner"
)

// RunStats tracks what a run did, for the summary table.
type RunStats struct {
	Clips   int
	Skipped int

	Strategy planner.ConcatStrategy
	Retries  int

	BaseDuration   float64
	FaceDuration   float64
	OutputDuration float64

	InputBytes  int64
	OutputBytes int64

	Elapsed time.Duration
	DryRun  bool
}

// Speed returns output seconds encoded per wall-clock second, or 0.
func (s *RunStats) Speed() float64 {
	if s.Elapsed <= 0 || s.OutputDuration <= 0 {
		return 0
	}
	return s.OutputDuration / s.Elapsed.Seconds()
}

// SizeRatio returns output bytes as a percentage of input bytes, or 0.
func (s *RunStats) SizeRatio() int64 {
	if s.InputBytes <= 0 {
		return 0
	}
	return s.OutputBytes * 100 / s.InputBytes
}
