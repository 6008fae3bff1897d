package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/planner"
)

// preamble returns the binary plus the flags every invocation shares.
func preamble(cfg *config.Config, loglevel string) []string {
	bin := cfg.Tools.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	if loglevel == "" {
		loglevel = "error"
		if cfg.Logging.Verbose {
			loglevel = "info"
		}
	}
	return []string{bin, "-hide_banner", "-nostdin", "-y", "-loglevel", loglevel}
}

// ConcatList renders a concat demuxer list: one `file '<path>'` line per
// clip, with single quotes escaped as '\''. Paths should be absolute since
// the demuxer resolves relative entries against the list file's directory.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// BuildConcat constructs the argv that writes plan.OutputPath. listPath is
// only read by the stream-copy strategy.
func BuildConcat(cfg *config.Config, plan *planner.ConcatPlan, listPath string) []string {
	args := preamble(cfg, "")

	if plan.Strategy == planner.ConcatCopy {
		return append(args,
			"-f", "concat", "-safe", "0",
			"-i", listPath,
			"-map", "0:v:0", "-map", "0:a:0",
			"-c", "copy",
			plan.OutputPath,
		)
	}

	for _, in := range plan.Inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", plan.FilterGraph,
		"-map", "[v]", "-map", "[a]",
		"-c:v", plan.VideoCodec,
	)
	if plan.VideoCodec == "libx264" || plan.VideoCodec == "libx265" {
		args = append(args, "-crf", strconv.Itoa(plan.CRF), "-preset", plan.Preset)
	}
	return append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", plan.AudioCodec,
		plan.OutputPath,
	)
}

// BuildVolumeDetect constructs the measurement pass over the first audio
// stream of src. The result is read from stderr, so loglevel is info.
func BuildVolumeDetect(cfg *config.Config, src string) []string {
	args := preamble(cfg, "info")
	return append(args,
		"-nostats",
		"-i", src,
		"-map", "0:a:0",
		"-af", "volumedetect",
		"-vn", "-sn", "-dn",
		"-f", "null", "-",
	)
}

// BuildCondition constructs the processing pass: chain applied to the first
// audio stream of src, written to dst as 16-bit PCM WAV at the given rate
// and channel count.
func BuildCondition(cfg *config.Config, src, dst, chain string, sampleRate, channels int) []string {
	args := preamble(cfg, "")
	args = append(args,
		"-i", src,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-af", chain,
		"-c:a", "pcm_s16le",
	)
	if sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(sampleRate))
	}
	if channels > 0 {
		args = append(args, "-ac", strconv.Itoa(channels))
	}
	return append(args, "-f", "wav", dst)
}

// BuildComposite constructs the final overlay + mix + encode pass. Inputs
// are ordered base (0), face (1), conditioned audio (2) to match the plan's
// filtergraph. rs supplies the current mux queue size and timestamp fix.
func BuildComposite(cfg *config.Config, plan *planner.CompositePlan, rs *RetryState) []string {
	args := preamble(cfg, "")

	// --- Inputs ---
	for _, in := range []string{plan.BasePath, plan.FacePath} {
		if rs.TimestampFix {
			args = append(args, "-fflags", "+genpts")
		}
		args = append(args, "-i", in)
	}
	args = append(args, "-i", plan.AudioPath)

	// --- Graph and maps ---
	args = append(args,
		"-filter_complex", plan.FilterComplex,
		"-map", "[v]", "-map", "[a]",
		"-t", strconv.FormatFloat(plan.Duration, 'f', 6, 64),
	)

	// --- Codecs ---
	args = append(args, "-c:v", plan.VideoCodec)
	if plan.Preset != "" {
		args = append(args, "-preset", plan.Preset)
	}
	if plan.PixFmt != "" {
		args = append(args, "-pix_fmt", plan.PixFmt)
	}
	args = append(args, "-c:a", plan.AudioCodec)

	// --- Muxing ---
	args = append(args, "-max_muxing_queue_size", strconv.Itoa(rs.MuxQueueSize))
	if rs.TimestampFix {
		args = append(args, "-avoid_negative_ts", "make_zero")
	}
	args = append(args, plan.ContainerOpts...)

	return append(args, plan.OutputPath)
}

// FormatCommand renders argv as a copy-pasteable shell line.
func FormatCommand(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			strings.ContainsRune("-_./:=+,@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
