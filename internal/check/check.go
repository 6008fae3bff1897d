// Package check provides system diagnostics (the check subcommand) and
// pre-pipeline dependency validation (CheckDeps) for ffmpeg, ffprobe, the
// configured encoders, and the filters the filtergraphs rely on.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/display"
)

// Sentinel errors returned by CheckDeps when a required tool, encoder or
// filter is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrEncoderMissing  = errors.New("ffmpeg lacks a required encoder")
	ErrFilterMissing   = errors.New("ffmpeg lacks a required filter")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Print(string)
}

// baseFilters are used by every run: concat normalization, the overlay,
// the conditioner chain and the final mix.
var baseFilters = []string{
	"concat", "scale", "pad", "setsar", "fps", "format", "trim", "setpts",
	"aresample", "aformat", "apad", "atrim", "asetpts", "anullsrc",
	"overlay", "volume", "volumedetect", "lowpass", "highpass", "acompressor", "amix",
}

// RequiredFilters lists the ffmpeg filters a run with cfg will use.
func RequiredFilters(cfg *config.Config) []string {
	out := append([]string(nil), baseFilters...)
	if cfg.Audio.BaseAudio == config.BaseAudioDuck {
		out = append(out, "asplit", "sidechaincompress")
	}
	return out
}

// RequiredEncoders lists the encoders a run with cfg will use, without
// duplicates. The conditioned face audio is always 16-bit PCM.
func RequiredEncoders(cfg *config.Config) []string {
	var out []string
	seen := map[string]bool{"copy": true, "": true}
	for _, name := range []string{cfg.Encode.VideoCodec, cfg.Encode.AudioCodec, cfg.Encode.IntermediateCodec, "pcm_s16le"} {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// CheckDeps is the pre-pipeline validation: ffmpeg and ffprobe must be on
// PATH, and ffmpeg must provide every encoder and filter the run needs.
// Returns a sentinel error (wrapped with the missing names) on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Tools.FFmpeg); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.Tools.FFprobe); err != nil {
		return ErrFfprobeNotFound
	}

	encoders, err := listEncoders(ctx, cfg.Tools.FFmpeg)
	if err != nil {
		return err
	}
	if miss := missing(RequiredEncoders(cfg), encoders); len(miss) > 0 {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, strings.Join(miss, ", "))
	}

	filters, err := listFilters(ctx, cfg.Tools.FFmpeg)
	if err != nil {
		return err
	}
	if miss := missing(RequiredFilters(cfg), filters); len(miss) > 0 {
		return fmt.Errorf("%w: %s", ErrFilterMissing, strings.Join(miss, ", "))
	}
	return nil
}

// RunCheck prints tool versions and the availability of every encoder and
// filter in a table. It reports false when anything required is missing.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	rows := [][]string{}
	ok := true

	for _, bin := range []string{cfg.Tools.FFmpeg, cfg.Tools.FFprobe} {
		v, err := version(ctx, bin)
		if err != nil {
			rows = append(rows, []string{"tool", bin, "missing"})
			ok = false
			continue
		}
		rows = append(rows, []string{"tool", bin, v})
	}
	if !ok {
		log.Print(display.RenderTable([]string{"Kind", "Name", "Status"}, rows, nil))
		log.Error("ffmpeg and ffprobe are required")
		return false
	}

	encoders, err := listEncoders(ctx, cfg.Tools.FFmpeg)
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
	}
	for _, name := range RequiredEncoders(cfg) {
		rows = append(rows, []string{"encoder", name, status(encoders[name])})
		ok = ok && encoders[name]
	}

	filters, err := listFilters(ctx, cfg.Tools.FFmpeg)
	if err != nil {
		log.Warn("Could not list filters: %v", err)
	}
	for _, name := range RequiredFilters(cfg) {
		rows = append(rows, []string{"filter", name, status(filters[name])})
		ok = ok && filters[name]
	}

	log.Print(display.RenderTable([]string{"Kind", "Name", "Status"}, rows, nil))
	if ok {
		log.Success("All dependencies available")
	} else {
		log.Error("Missing dependencies; see table above")
	}
	return ok
}

// --- internal helpers ---

func status(found bool) string {
	if found {
		return "ok"
	}
	return "missing"
}

// version returns the first line of `<bin> -version`.
func version(ctx context.Context, bin string) (string, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, bin, "-hide_banner", "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", bin, err)
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	return line, nil
}

func listEncoders(ctx context.Context, ffmpegBin string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, ffmpegBin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}
	return parseEncoders(string(out)), nil
}

func listFilters(ctx context.Context, ffmpegBin string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, ffmpegBin, "-hide_banner", "-filters").Output()
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return parseFilters(string(out)), nil
}

// parseEncoders reads `ffmpeg -encoders`: a legend, a "------" separator,
// then one "FLAGS name description" line per encoder.
func parseEncoders(out string) map[string]bool {
	names := make(map[string]bool)
	started := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if !started {
			started = strings.HasPrefix(trimmed, "------")
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names
}

// parseFilters reads `ffmpeg -filters`. Filter lines are
// "FLAGS name IN->OUT description"; legend lines have no arrow.
func parseFilters(out string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && strings.Contains(fields[2], "->") {
			names[fields[1]] = true
		}
	}
	return names
}

// missing returns the entries of want not present in have, in order.
func missing(want []string, have map[string]bool) []string {
	var out []string
	for _, name := range want {
		if !have[name] {
			out = append(out, name)
		}
	}
	return out
}
