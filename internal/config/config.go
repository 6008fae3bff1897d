// Package config holds runtime configuration: defaults, TOML file loading,
// CLI flag binding, and validation. Defaults are screen_recording/,
// face.mov and final_video.mp4, libx264 + aac, and a 200px overlay in the
// bottom-right corner.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Anchor is the corner of the base frame the face overlay is pinned to.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right" // Default.
)

// TailPolicy controls the overlay once the face clip ends before the base.
type TailPolicy string

const (
	TailPass TailPolicy = "pass" // Overlay disappears (default).
	TailHold TailPolicy = "hold" // Last face frame stays on screen.
)

// BaseAudioMode decides what happens to the concatenated clips' own audio.
type BaseAudioMode string

const (
	BaseAudioMix  BaseAudioMode = "mix"  // Base and conditioned face audio mixed (default).
	BaseAudioDrop BaseAudioMode = "drop" // Conditioned face audio only.
	BaseAudioDuck BaseAudioMode = "duck" // Base compressed under the face audio, then mixed.
)

// NonNumericPolicy decides how clips whose stem is not an integer are handled.
type NonNumericPolicy string

const (
	NonNumericFail NonNumericPolicy = "fail" // Abort the run (default).
	NonNumericSkip NonNumericPolicy = "skip" // Ignore the file and warn.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Paths locates the inputs, the final render and the scratch area.
type Paths struct {
	InputDir   string `toml:"input_dir"`
	FaceVideo  string `toml:"face_video"`
	OutputPath string `toml:"output_path"`
	WorkDir    string `toml:"work_dir"` // Empty: os.TempDir().
}

// Clips describes the naming convention of the numbered recordings.
type Clips struct {
	Extension  string           `toml:"extension"`
	NonNumeric NonNumericPolicy `toml:"non_numeric"`
}

// Encode holds codec choices for the final export and the intermediate.
type Encode struct {
	VideoCodec         string `toml:"video_codec"`
	AudioCodec         string `toml:"audio_codec"`
	PixFmt             string `toml:"pix_fmt"`
	Preset             string `toml:"preset"`
	IntermediateCodec  string `toml:"intermediate_codec"`
	IntermediateCRF    int    `toml:"intermediate_crf"`
	IntermediatePreset string `toml:"intermediate_preset"`
}

// Overlay holds face-cam placement and scaling.
type Overlay struct {
	Height     int        `toml:"height"`
	Anchor     Anchor     `toml:"anchor"`
	Margin     int        `toml:"margin"`
	Tail       TailPolicy `toml:"tail"`
	ScaleFlags string     `toml:"scale_flags"`
}

// Audio holds the conditioner filter parameters and the base-audio policy.
type Audio struct {
	BaseAudio             BaseAudioMode `toml:"base_audio"`
	HeadroomDB            float64       `toml:"headroom_db"`
	LowpassHz             int           `toml:"lowpass_hz"`
	HighpassHz            int           `toml:"highpass_hz"`
	FilterPoles           int           `toml:"filter_poles"`
	CompressorThresholdDB float64       `toml:"compressor_threshold_db"`
	CompressorRatio       float64       `toml:"compressor_ratio"`
	CompressorAttackMs    float64       `toml:"compressor_attack_ms"`
	CompressorReleaseMs   float64       `toml:"compressor_release_ms"`
}

// Tools names the external binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging controls console and file output.
type Logging struct {
	Verbose bool      `toml:"verbose"`
	Color   ColorMode `toml:"color"`
	LogFile string    `toml:"log_file"`
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] and then by bound CLI flags before being passed
// (by pointer) to packages that need it.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Clips   Clips   `toml:"clips"`
	Encode  Encode  `toml:"encode"`
	Overlay Overlay `toml:"overlay"`
	Audio   Audio   `toml:"audio"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`

	// Behavior flags (CLI only).
	DryRun    bool `toml:"-"`
	Strict    bool `toml:"-"` // Disable ffmpeg retry fallbacks.
	CheckOnly bool `toml:"-"` // Skip path requirements (check subcommand).
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Paths: Paths{
			InputDir:   "screen_recording",
			FaceVideo:  "face.mov",
			OutputPath: "final_video.mp4",
		},
		Clips: Clips{
			Extension:  ".mov",
			NonNumeric: NonNumericFail,
		},
		Encode: Encode{
			VideoCodec:         "libx264",
			AudioCodec:         "aac",
			PixFmt:             "yuv420p",
			Preset:             "medium",
			IntermediateCodec:  "libx264",
			IntermediateCRF:    14,
			IntermediatePreset: "veryfast",
		},
		Overlay: Overlay{
			Height:     200,
			Anchor:     AnchorBottomRight,
			Margin:     0,
			Tail:       TailPass,
			ScaleFlags: "lanczos",
		},
		Audio: Audio{
			BaseAudio:             BaseAudioMix,
			HeadroomDB:            0.1,
			LowpassHz:             3000,
			HighpassHz:            300,
			FilterPoles:           1,
			CompressorThresholdDB: -20,
			CompressorRatio:       4,
			CompressorAttackMs:    5,
			CompressorReleaseMs:   50,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Logging: Logging{
			Color: ColorAuto,
		},
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NormalizeExtension lowercases ext and guarantees a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Validate checks enum fields and numeric ranges, normalizing the clip
// extension and input directory in place. Outside CheckOnly mode it also
// requires the three paths to be set.
func (c *Config) Validate() error {
	c.Clips.Extension = NormalizeExtension(c.Clips.Extension)
	c.Paths.InputDir = NormalizeDirArg(c.Paths.InputDir)

	switch c.Overlay.Anchor {
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight:
	default:
		return fmt.Errorf("invalid anchor %q (use top-left, top-right, bottom-left or bottom-right)", c.Overlay.Anchor)
	}

	switch c.Overlay.Tail {
	case TailPass, TailHold:
	default:
		return fmt.Errorf("invalid tail policy %q (use 'pass' or 'hold')", c.Overlay.Tail)
	}

	switch c.Audio.BaseAudio {
	case BaseAudioMix, BaseAudioDrop, BaseAudioDuck:
	default:
		return fmt.Errorf("invalid base audio mode %q (use 'mix', 'drop' or 'duck')", c.Audio.BaseAudio)
	}

	switch c.Clips.NonNumeric {
	case NonNumericFail, NonNumericSkip:
	default:
		return fmt.Errorf("invalid non-numeric policy %q (use 'fail' or 'skip')", c.Clips.NonNumeric)
	}

	switch c.Logging.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.Logging.Color)
	}

	if c.Clips.Extension == "" || c.Clips.Extension == "." {
		return errors.New("clip extension must not be empty")
	}
	if c.Overlay.Height <= 0 {
		return fmt.Errorf("overlay height must be positive (got %d)", c.Overlay.Height)
	}
	if c.Overlay.Margin < 0 {
		return fmt.Errorf("overlay margin must not be negative (got %d)", c.Overlay.Margin)
	}
	if strings.TrimSpace(c.Encode.VideoCodec) == "" || strings.TrimSpace(c.Encode.AudioCodec) == "" {
		return errors.New("video and audio codecs must not be empty")
	}
	if c.Encode.IntermediateCRF < 0 || c.Encode.IntermediateCRF > 51 {
		return fmt.Errorf("intermediate CRF must be within 0-51 (got %d)", c.Encode.IntermediateCRF)
	}
	if err := c.validateAudio(); err != nil {
		return err
	}

	if c.CheckOnly {
		return nil
	}
	if c.Paths.InputDir == "" || c.Paths.FaceVideo == "" || c.Paths.OutputPath == "" {
		return errors.New("need input_dir, face_video and output_path")
	}
	return c.ValidatePaths()
}

func (c *Config) validateAudio() error {
	a := &c.Audio
	if a.LowpassHz <= 0 || a.HighpassHz <= 0 {
		return errors.New("filter cutoffs must be positive")
	}
	if a.HighpassHz >= a.LowpassHz {
		return fmt.Errorf("high-pass cutoff (%d Hz) must be below low-pass cutoff (%d Hz)", a.HighpassHz, a.LowpassHz)
	}
	if a.FilterPoles < 1 || a.FilterPoles > 2 {
		return fmt.Errorf("filter poles must be 1 or 2 (got %d)", a.FilterPoles)
	}
	if a.CompressorRatio < 1 {
		return fmt.Errorf("compressor ratio must be at least 1 (got %g)", a.CompressorRatio)
	}
	if a.CompressorAttackMs <= 0 || a.CompressorReleaseMs <= 0 {
		return errors.New("compressor attack and release must be positive")
	}
	if a.HeadroomDB < 0 {
		return fmt.Errorf("normalize headroom must not be negative (got %g)", a.HeadroomDB)
	}
	return nil
}

// ValidatePaths rejects an output path that would clobber the face video or
// be picked up as a clip by a later run.
func (c *Config) ValidatePaths() error {
	out := filepath.Clean(c.Paths.OutputPath)
	if out == filepath.Clean(c.Paths.FaceVideo) {
		return errors.New("output path must differ from the face video")
	}
	if filepath.Clean(filepath.Dir(out)) == filepath.Clean(c.Paths.InputDir) &&
		strings.EqualFold(filepath.Ext(out), c.Clips.Extension) {
		return fmt.Errorf("output %q would be discovered as a clip; choose another directory or extension", c.Paths.OutputPath)
	}
	return nil
}
