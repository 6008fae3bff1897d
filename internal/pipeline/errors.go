package pipeline

import (
	"errors"
	"strings"

	"github.com/backmassage/camstitch/internal/ffmpeg"
)

// Sentinel errors for conditions the caller may want to test for.
var (
	ErrNoClips      = errors.New("no clips found")
	ErrOutputLocked = errors.New("output is locked by another camstitch run")
	ErrFaceNoVideo  = errors.New("face video has no video stream")
)

// Kind classifies a failure by what went wrong rather than where.
type Kind int

const (
	KindInput  Kind = iota + 1 // missing or unusable input, bad naming
	KindDecode                 // a file could not be probed or decoded
	KindFilter                 // a filtergraph or DSP pass failed
	KindExport                 // encoding, muxing or writing the output failed
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindDecode:
		return "decode error"
	case KindFilter:
		return "filter error"
	case KindExport:
		return "export error"
	default:
		return "error"
	}
}

// StageError wraps a failure with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + " (" + e.Kind.String() + "): " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// KindOf returns the kind of the first StageError in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// ffmpegError turns a failed run into an error carrying the last lines of
// stderr, and picks the kind from the stderr contents.
func ffmpegError(res ffmpeg.ExecResult, fallback Kind) (Kind, error) {
	kind := fallback
	switch {
	case ffmpeg.MissingFilter(res.Stderr) != "":
		kind = KindFilter
	case ffmpeg.MatchUnknownEncoder(res.Stderr):
		kind = KindExport
	}
	lines := ffmpeg.Tail(res.Stderr, 3)
	if len(lines) == 0 {
		return kind, res.Err
	}
	return kind, errors.Join(res.Err, errors.New(strings.Join(lines, "; ")))
}
