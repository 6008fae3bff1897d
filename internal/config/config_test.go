package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/rec", "/media/rec"},
		{"single trailing slash", "/media/rec/", "/media/rec"},
		{"multiple trailing slashes", "/media/rec///", "/media/rec"},
		{"root path", "/", "/"},
		{"relative path", "screen_recording", "screen_recording"},
		{"relative with slash", "screen_recording/", "screen_recording"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct{ in, want string }{
		{".mov", ".mov"},
		{"mov", ".mov"},
		{".MOV", ".mov"},
		{" mp4 ", ".mp4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeExtension(tt.in); got != tt.want {
			t.Errorf("NormalizeExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.InputDir != "screen_recording" {
		t.Errorf("InputDir = %q", cfg.Paths.InputDir)
	}
	if cfg.Paths.FaceVideo != "face.mov" {
		t.Errorf("FaceVideo = %q", cfg.Paths.FaceVideo)
	}
	if cfg.Paths.OutputPath != "final_video.mp4" {
		t.Errorf("OutputPath = %q", cfg.Paths.OutputPath)
	}
	if cfg.Encode.VideoCodec != "libx264" || cfg.Encode.AudioCodec != "aac" {
		t.Errorf("codecs = %q/%q", cfg.Encode.VideoCodec, cfg.Encode.AudioCodec)
	}
	if cfg.Overlay.Height != 200 {
		t.Errorf("overlay height = %d, want 200", cfg.Overlay.Height)
	}
	if cfg.Overlay.Anchor != AnchorBottomRight {
		t.Errorf("anchor = %q, want bottom-right", cfg.Overlay.Anchor)
	}
	if cfg.Audio.LowpassHz != 3000 || cfg.Audio.HighpassHz != 300 {
		t.Errorf("cutoffs = %d/%d", cfg.Audio.LowpassHz, cfg.Audio.HighpassHz)
	}
	if cfg.Clips.NonNumeric != NonNumericFail {
		t.Errorf("non-numeric policy = %q, want fail", cfg.Clips.NonNumeric)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_Enums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad anchor", func(c *Config) { c.Overlay.Anchor = "center" }},
		{"empty anchor", func(c *Config) { c.Overlay.Anchor = "" }},
		{"bad tail", func(c *Config) { c.Overlay.Tail = "loop" }},
		{"bad base audio", func(c *Config) { c.Audio.BaseAudio = "replace" }},
		{"bad non-numeric", func(c *Config) { c.Clips.NonNumeric = "ignore" }},
		{"bad color", func(c *Config) { c.Logging.Color = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"zero overlay height", func(c *Config) { c.Overlay.Height = 0 }, true},
		{"negative margin", func(c *Config) { c.Overlay.Margin = -4 }, true},
		{"highpass above lowpass", func(c *Config) { c.Audio.HighpassHz = 4000 }, true},
		{"poles out of range", func(c *Config) { c.Audio.FilterPoles = 3 }, true},
		{"ratio below one", func(c *Config) { c.Audio.CompressorRatio = 0.5 }, true},
		{"empty video codec", func(c *Config) { c.Encode.VideoCodec = " " }, true},
		{"crf too high", func(c *Config) { c.Encode.IntermediateCRF = 60 }, true},
		{"empty extension", func(c *Config) { c.Clips.Extension = "" }, true},
		{"two poles ok", func(c *Config) { c.Audio.FilterPoles = 2 }, false},
		{"extension without dot ok", func(c *Config) { c.Clips.Extension = "MP4" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RequiresPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.FaceVideo = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when face video is empty")
	}

	cfg.CheckOnly = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should pass with empty paths when CheckOnly is true, got: %v", err)
	}
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		face    string
		output  string
		wantErr bool
	}{
		{"defaults", "screen_recording", "face.mov", "final_video.mp4", false},
		{"output equals face", "rec", "face.mov", "./face.mov", true},
		{"output rediscovered as clip", "rec", "face.mov", "rec/99.mov", true},
		{"output in input dir other ext", "rec", "face.mov", "rec/final.mp4", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Paths.InputDir = tt.input
			cfg.Paths.FaceVideo = tt.face
			cfg.Paths.OutputPath = tt.output
			err := cfg.ValidatePaths()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaths() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camstitch.toml")
	content := `
[paths]
input_dir = "/rec"
face_video = "/cam/me.mov"

[overlay]
height = 240
anchor = "top-right"

[audio]
base_audio = "duck"
lowpass_hz = 3400
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	resolved, found, err := LoadFile(&cfg, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !found || resolved != path {
		t.Fatalf("resolved=%q found=%v", resolved, found)
	}
	if cfg.Paths.InputDir != "/rec" || cfg.Paths.FaceVideo != "/cam/me.mov" {
		t.Errorf("paths = %+v", cfg.Paths)
	}
	if cfg.Paths.OutputPath != "final_video.mp4" {
		t.Errorf("unset key should keep default, got %q", cfg.Paths.OutputPath)
	}
	if cfg.Overlay.Height != 240 || cfg.Overlay.Anchor != AnchorTopRight {
		t.Errorf("overlay = %+v", cfg.Overlay)
	}
	if cfg.Audio.BaseAudio != BaseAudioDuck || cfg.Audio.LowpassHz != 3400 || cfg.Audio.HighpassHz != 300 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
}

func TestLoadFile_UnknownKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[overlay]\nheigth = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	_, _, err := LoadFile(&cfg, path)
	if err == nil || !strings.Contains(err.Error(), "heigth") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadFile_MissingExplicitFails(t *testing.T) {
	cfg := DefaultConfig()
	if _, _, err := LoadFile(&cfg, filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFile_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := DefaultConfig()
	_, found, err := LoadFile(&cfg, "")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if found {
		t.Error("no default file should be found in an empty directory")
	}
}

func TestEncode_RoundTripsThroughLoadFile(t *testing.T) {
	want := DefaultConfig()
	want.Overlay.Margin = 16
	want.Audio.BaseAudio = BaseAudioDrop

	text, err := EncodeTOML(&want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	got := DefaultConfig()
	if _, _, err := LoadFile(&got, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Overlay.Margin != 16 || got.Audio.BaseAudio != BaseAudioDrop {
		t.Errorf("round trip lost values: overlay=%+v audio=%+v", got.Overlay, got.Audio)
	}
}

func TestFlags_OnlyChangedOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlay.Height = 320 // pretend the config file set this

	var f Flags
	fs := pflag.NewFlagSet("camstitch", pflag.ContinueOnError)
	f.Bind(fs, DefaultConfig())
	if err := fs.Parse([]string{"--anchor", "TOP-LEFT", "-o", "out.mkv", "--base-audio=drop", "--dry-run"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f.Apply(fs, &cfg)

	if cfg.Overlay.Height != 320 {
		t.Errorf("unchanged flag overwrote file value: height=%d", cfg.Overlay.Height)
	}
	if cfg.Overlay.Anchor != AnchorTopLeft {
		t.Errorf("anchor = %q", cfg.Overlay.Anchor)
	}
	if cfg.Paths.OutputPath != "out.mkv" {
		t.Errorf("output = %q", cfg.Paths.OutputPath)
	}
	if cfg.Audio.BaseAudio != BaseAudioDrop {
		t.Errorf("base audio = %q", cfg.Audio.BaseAudio)
	}
	if !cfg.DryRun {
		t.Error("dry run should be set")
	}
}

func TestFlags_RejectsInvalidEnum(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("camstitch", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	f.Bind(fs, DefaultConfig())
	if err := fs.Parse([]string{"--tail", "forever"}); err == nil {
		t.Fatal("expected parse error for invalid tail policy")
	}
}

func TestApplyPositional(t *testing.T) {
	cfg := DefaultConfig()
	if err := ApplyPositional(&cfg, []string{"clips/"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.InputDir != "clips" {
		t.Errorf("InputDir = %q", cfg.Paths.InputDir)
	}
	if err := ApplyPositional(&cfg, []string{"a", "b"}); err == nil {
		t.Error("expected error for two positional args")
	}
}
