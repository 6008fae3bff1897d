package config

// This file binds CLI flags to a staging struct. Values are copied onto a
// Config after the TOML file has been applied, and only for flags the user
// actually passed, so precedence is defaults < file < flags.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds raw flag values until [Flags.Apply] copies the changed ones.
type Flags struct {
	ConfigPath string

	inputDir   string
	faceVideo  string
	outputPath string
	workDir    string

	extension  string
	nonNumeric NonNumericPolicy

	videoCodec string
	audioCodec string
	preset     string

	overlayHeight int
	anchor        Anchor
	margin        int
	tail          TailPolicy

	baseAudio BaseAudioMode

	verbose bool
	color   ColorMode
	logFile string

	dryRun bool
	strict bool
}

// Bind registers all pipeline flags on fs. defaults supplies the values
// shown in --help.
func (f *Flags) Bind(fs *pflag.FlagSet, defaults Config) {
	f.nonNumeric = defaults.Clips.NonNumeric
	f.anchor = defaults.Overlay.Anchor
	f.tail = defaults.Overlay.Tail
	f.baseAudio = defaults.Audio.BaseAudio
	f.color = defaults.Logging.Color

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "TOML config file (default ./"+DefaultFileName+" when present)")

	// Paths
	fs.StringVar(&f.inputDir, "input-dir", defaults.Paths.InputDir, "Directory of numbered clips")
	fs.StringVar(&f.faceVideo, "face", defaults.Paths.FaceVideo, "Face-cam video to overlay")
	fs.StringVarP(&f.outputPath, "output", "o", defaults.Paths.OutputPath, "Final render path")
	fs.StringVar(&f.workDir, "work-dir", defaults.Paths.WorkDir, "Parent directory for scratch files (default: system temp)")

	// Clips
	fs.StringVar(&f.extension, "ext", defaults.Clips.Extension, "Clip file extension")
	fs.Var(newEnumValue(&f.nonNumeric, NonNumericFail, NonNumericSkip), "non-numeric", "Non-numeric clip names: fail | skip")

	// Encoding
	fs.StringVar(&f.videoCodec, "video-codec", defaults.Encode.VideoCodec, "Final video encoder")
	fs.StringVar(&f.audioCodec, "audio-codec", defaults.Encode.AudioCodec, "Final audio encoder")
	fs.StringVarP(&f.preset, "preset", "p", defaults.Encode.Preset, "Encoder preset for the final render")

	// Overlay
	fs.IntVar(&f.overlayHeight, "overlay-height", defaults.Overlay.Height, "Face overlay height in pixels")
	fs.Var(newEnumValue(&f.anchor, AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight), "anchor", "Overlay corner")
	fs.IntVar(&f.margin, "margin", defaults.Overlay.Margin, "Distance from the anchored edges in pixels")
	fs.Var(newEnumValue(&f.tail, TailPass, TailHold), "tail", "When the face clip ends first: pass | hold")

	// Audio
	fs.Var(newEnumValue(&f.baseAudio, BaseAudioMix, BaseAudioDrop, BaseAudioDuck), "base-audio", "Base audio handling: mix | drop | duck")

	// Display
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	fs.Var(newEnumValue(&f.color, ColorAuto, ColorAlways, ColorNever), "color", "Colored logs: auto | always | never")
	fs.StringVarP(&f.logFile, "log", "l", "", "Append JSON logs to file")

	// Behavior
	fs.BoolVarP(&f.dryRun, "dry-run", "d", false, "Plan and print ffmpeg commands without writing anything")
	fs.BoolVar(&f.strict, "strict", false, "Disable automatic ffmpeg retry fallbacks")
}

// Apply copies every flag the user set onto cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	changed := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("input-dir") {
		cfg.Paths.InputDir = f.inputDir
	}
	if changed("face") {
		cfg.Paths.FaceVideo = f.faceVideo
	}
	if changed("output") {
		cfg.Paths.OutputPath = f.outputPath
	}
	if changed("work-dir") {
		cfg.Paths.WorkDir = f.workDir
	}
	if changed("ext") {
		cfg.Clips.Extension = f.extension
	}
	if changed("non-numeric") {
		cfg.Clips.NonNumeric = f.nonNumeric
	}
	if changed("video-codec") {
		cfg.Encode.VideoCodec = f.videoCodec
	}
	if changed("audio-codec") {
		cfg.Encode.AudioCodec = f.audioCodec
	}
	if changed("preset") {
		cfg.Encode.Preset = f.preset
	}
	if changed("overlay-height") {
		cfg.Overlay.Height = f.overlayHeight
	}
	if changed("anchor") {
		cfg.Overlay.Anchor = f.anchor
	}
	if changed("margin") {
		cfg.Overlay.Margin = f.margin
	}
	if changed("tail") {
		cfg.Overlay.Tail = f.tail
	}
	if changed("base-audio") {
		cfg.Audio.BaseAudio = f.baseAudio
	}
	if changed("verbose") {
		cfg.Logging.Verbose = f.verbose
	}
	if changed("color") {
		cfg.Logging.Color = f.color
	}
	if changed("log") {
		cfg.Logging.LogFile = f.logFile
	}
	if f.dryRun {
		cfg.DryRun = true
	}
	if f.strict {
		cfg.Strict = true
	}
}

// ApplyPositional treats a single positional argument as the input directory.
func ApplyPositional(cfg *Config, args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		cfg.Paths.InputDir = NormalizeDirArg(args[0])
		return nil
	default:
		return fmt.Errorf("expected at most one positional argument (input_dir), got %d", len(args))
	}
}

// enumValue adapts a validated string enum to pflag.Value.
type enumValue[T ~string] struct {
	p       *T
	allowed []T
}

func newEnumValue[T ~string](p *T, allowed ...T) *enumValue[T] {
	return &enumValue[T]{p: p, allowed: allowed}
}

func (e *enumValue[T]) String() string { return string(*e.p) }

func (e *enumValue[T]) Type() string { return "string" }

func (e *enumValue[T]) Set(s string) error {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range e.allowed {
		if v == a {
			*e.p = v
			return nil
		}
	}
	names := make([]string, len(e.allowed))
	for i, a := range e.allowed {
		names[i] = "'" + string(a) + "'"
	}
	return fmt.Errorf("invalid value %q (use %s)", s, strings.Join(names, ", "))
}
