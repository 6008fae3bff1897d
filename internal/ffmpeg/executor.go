package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// ErrEmptyCommand is returned by Execute when args is empty.
var ErrEmptyCommand = errors.New("empty ffmpeg command")

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// ExecOptions controls how a command is run.
type ExecOptions struct {
	// Tee receives a live copy of stderr (verbose mode); nil captures silently.
	Tee io.Writer
	// Progress, when set, is called with the encoded position in seconds
	// as ffmpeg reports it through -progress.
	Progress func(seconds float64)
}

// Execute runs args (binary first). Stderr is always captured for error
// classification. Cancelling ctx kills the process.
func Execute(ctx context.Context, args []string, opts ExecOptions) ExecResult {
	if len(args) == 0 {
		return ExecResult{Err: ErrEmptyCommand}
	}

	argv := args[1:]
	if opts.Progress != nil {
		argv = append([]string{"-progress", "pipe:1", "-nostats"}, argv...)
	}
	cmd := exec.CommandContext(ctx, args[0], argv...)

	var stderrBuf bytes.Buffer
	if opts.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, opts.Tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if opts.Progress == nil {
		err := cmd.Run()
		return ExecResult{Stderr: stderrBuf.String(), Err: err}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ExecResult{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return ExecResult{Err: err}
	}
	scanProgress(stdout, opts.Progress)
	err = cmd.Wait()
	return ExecResult{Stderr: stderrBuf.String(), Err: err}
}

// scanProgress reads -progress key=value blocks until EOF.
func scanProgress(r io.Reader, fn func(float64)) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if sec, ok := ParseProgressLine(sc.Text()); ok {
			fn(sec)
		}
	}
	// Drain so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}
