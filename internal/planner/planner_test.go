package planner

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/probe"
)

// --- Helper builders ---

func defaultCfg() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func clip(w, h int, rate string, dur float64, withAudio bool) *probe.ProbeResult {
	pr := &probe.ProbeResult{
		Format: probe.FormatInfo{Duration: dur},
		PrimaryVideo: &probe.VideoStream{
			Codec: "h264", PixFmt: "yuv420p",
			Width: w, Height: h, AvgFrameRate: rate,
		},
	}
	if withAudio {
		pr.AudioStreams = []probe.AudioStream{{Codec: "aac", Channels: 2, SampleRate: 48000}}
	}
	return pr
}

func sources(prs ...*probe.ProbeResult) []Source {
	out := make([]Source, len(prs))
	for i, pr := range prs {
		out[i] = Source{Path: string(rune('1'+i)) + ".mov", Probe: pr}
	}
	return out
}

// --- PlanConcat ---

func TestPlanConcat_CompatibleUsesCopy(t *testing.T) {
	plan, err := PlanConcat(defaultCfg(), sources(
		clip(1920, 1080, "30/1", 5, true),
		clip(1920, 1080, "30/1", 3, true),
		clip(1920, 1080, "30/1", 4, true),
	), "/ws/base.mkv")
	if err != nil {
		t.Fatalf("PlanConcat: %v", err)
	}
	if plan.Strategy != ConcatCopy {
		t.Fatalf("Strategy = %v (%s), want copy", plan.Strategy, plan.Reason)
	}
	if plan.Duration != 12 {
		t.Errorf("Duration = %v, want 12", plan.Duration)
	}
	if plan.FilterGraph != "" {
		t.Error("copy strategy should not carry a filter graph")
	}
	if len(plan.Inputs) != 3 || plan.Inputs[0] != "1.mov" || plan.Inputs[2] != "3.mov" {
		t.Errorf("Inputs = %v", plan.Inputs)
	}
	if plan.OutputPath != "/ws/base.mkv" {
		t.Errorf("OutputPath = %q", plan.OutputPath)
	}
	if math.Abs(plan.FrameDuration-1.0/30) > 1e-9 {
		t.Errorf("FrameDuration = %v", plan.FrameDuration)
	}
}

func TestPlanConcat_MismatchSelectsFilter(t *testing.T) {
	base := func() *probe.ProbeResult { return clip(1920, 1080, "30/1", 2, true) }
	cases := []struct {
		name   string
		mutate func(*probe.ProbeResult)
		reason string
	}{
		{"size", func(p *probe.ProbeResult) { p.PrimaryVideo.Width = 1280; p.PrimaryVideo.Height = 720 }, "size"},
		{"codec", func(p *probe.ProbeResult) { p.PrimaryVideo.Codec = "hevc" }, "video codec"},
		{"pix_fmt", func(p *probe.ProbeResult) { p.PrimaryVideo.PixFmt = "yuv422p" }, "pixel format"},
		{"frame rate", func(p *probe.ProbeResult) { p.PrimaryVideo.AvgFrameRate = "60/1" }, "frame rate"},
		{"no audio", func(p *probe.ProbeResult) { p.AudioStreams = nil }, "missing audio"},
		{"sample rate", func(p *probe.ProbeResult) { p.AudioStreams[0].SampleRate = 44100 }, "sample rate"},
		{"channels", func(p *probe.ProbeResult) { p.AudioStreams[0].Channels = 1 }, "channels"},
		{"audio codec", func(p *probe.ProbeResult) { p.AudioStreams[0].Codec = "pcm_s16le" }, "audio codec"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			second := base()
			tc.mutate(second)
			plan, err := PlanConcat(defaultCfg(), sources(base(), second), "base.mkv")
			if err != nil {
				t.Fatalf("PlanConcat: %v", err)
			}
			if plan.Strategy != ConcatFilter {
				t.Fatalf("Strategy = %v, want filter", plan.Strategy)
			}
			if !strings.Contains(plan.Reason, tc.reason) || !strings.Contains(plan.Reason, "clip 2") {
				t.Errorf("Reason = %q, want mention of %q and clip 2", plan.Reason, tc.reason)
			}
		})
	}
}

func TestPlanConcat_FilterGraph(t *testing.T) {
	cfg := defaultCfg()
	plan, err := PlanConcat(cfg, sources(
		clip(1281, 721, "30000/1001", 5, true),
		clip(640, 480, "25/1", 2.5, false),
	), "base.mkv")
	if err != nil {
		t.Fatalf("PlanConcat: %v", err)
	}
	if plan.Width != 1280 || plan.Height != 720 {
		t.Errorf("target = %dx%d, want even-rounded 1280x720", plan.Width, plan.Height)
	}
	if plan.FrameRate != "30000/1001" {
		t.Errorf("FrameRate = %q", plan.FrameRate)
	}
	if plan.VideoCodec != "libx264" || plan.CRF != 14 || plan.Preset != "veryfast" || plan.AudioCodec != "pcm_s16le" {
		t.Errorf("intermediate = %s crf %d %s %s", plan.VideoCodec, plan.CRF, plan.Preset, plan.AudioCodec)
	}

	g := plan.FilterGraph
	for _, want := range []string{
		"[0:v]scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=30000/1001,format=yuv420p,trim=duration=5,setpts=PTS-STARTPTS[v0]",
		"[0:a]aresample=48000,aformat=sample_fmts=fltp:channel_layouts=stereo,apad,atrim=end=5,asetpts=PTS-STARTPTS[a0]",
		"[1:v]scale=1280:720:",
		"trim=duration=2.5,",
		"anullsrc=r=48000:cl=stereo,atrim=duration=2.5,aformat=sample_fmts=fltp[a1]",
		"[v0][a0][v1][a1]concat=n=2:v=1:a=1[v][a]",
	} {
		if !strings.Contains(g, want) {
			t.Errorf("graph missing %q\n%s", want, g)
		}
	}
	if strings.Contains(g, "[1:a]") {
		t.Error("clip without audio must not reference its audio stream")
	}
}

func TestPlanConcat_Errors(t *testing.T) {
	if _, err := PlanConcat(defaultCfg(), nil, "x"); !errors.Is(err, ErrNoSources) {
		t.Errorf("empty: err = %v", err)
	}
	audioOnly := &probe.ProbeResult{Format: probe.FormatInfo{Duration: 1}}
	if _, err := PlanConcat(defaultCfg(), sources(audioOnly), "x"); err == nil {
		t.Error("expected error for clip without video")
	}
}

func TestPlanConcat_UnknownRateDefaults(t *testing.T) {
	plan, err := PlanConcat(defaultCfg(), sources(clip(640, 360, "0/0", 1, false)), "x")
	if err != nil {
		t.Fatalf("PlanConcat: %v", err)
	}
	if plan.FrameRate != "30" {
		t.Errorf("FrameRate = %q, want 30", plan.FrameRate)
	}
}

func TestConcatStrategyString(t *testing.T) {
	if ConcatCopy.String() != "stream copy" || ConcatFilter.String() != "filter concat" {
		t.Error("unexpected strategy names")
	}
	if ConcatStrategy(9).String() != "unknown" {
		t.Error("out-of-range strategy should be unknown")
	}
}

// --- Overlay geometry ---

func TestScaleToHeight(t *testing.T) {
	tests := []struct {
		w, h, target   int
		wantW, wantH   int
	}{
		{1920, 1080, 200, 355, 200},
		{1280, 720, 200, 355, 200},
		{1080, 1920, 200, 112, 200},
		{640, 480, 200, 266, 200},
		{200, 200, 200, 200, 200},
		{1, 10000, 200, 1, 200},
		{0, 0, 200, 200, 200},
	}
	for _, tt := range tests {
		w, h := ScaleToHeight(tt.w, tt.h, tt.target)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("ScaleToHeight(%d, %d, %d) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.target, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestAnchorPosition(t *testing.T) {
	tests := []struct {
		anchor config.Anchor
		margin int
		x, y   string
	}{
		{config.AnchorBottomRight, 0, "main_w-overlay_w-0", "main_h-overlay_h-0"},
		{config.AnchorTopLeft, 16, "16", "16"},
		{config.AnchorTopRight, 8, "main_w-overlay_w-8", "8"},
		{config.AnchorBottomLeft, 4, "4", "main_h-overlay_h-4"},
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			x, y := AnchorPosition(tt.anchor, tt.margin)
			if x != tt.x || y != tt.y {
				t.Errorf("AnchorPosition = (%s, %s), want (%s, %s)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestPlanOverlay(t *testing.T) {
	cfg := defaultCfg()
	face := clip(1920, 1080, "30/1", 10, true)

	o, err := PlanOverlay(cfg, face)
	if err != nil {
		t.Fatalf("PlanOverlay: %v", err)
	}
	if o.Width != 355 || o.Height != 200 || o.EOFAction != "pass" || o.ScaleFlags != "lanczos" {
		t.Errorf("overlay = %+v", o)
	}
	want := "[1:v]scale=355:200:flags=lanczos,setsar=1[face];" +
		"[0:v][face]overlay=x=main_w-overlay_w-0:y=main_h-overlay_h-0:eof_action=pass[v]"
	if got := o.Graph(); got != want {
		t.Errorf("Graph =\n%s\nwant\n%s", got, want)
	}

	cfg.Overlay.Tail = config.TailHold
	o, _ = PlanOverlay(cfg, face)
	if o.EOFAction != "repeat" {
		t.Errorf("hold tail: EOFAction = %q", o.EOFAction)
	}

	if _, err := PlanOverlay(cfg, &probe.ProbeResult{}); err == nil {
		t.Error("expected error for face without video")
	}
}

// --- Audio ---

func TestGainDB(t *testing.T) {
	tests := []struct {
		name     string
		max      float64
		headroom float64
		want     float64
	}{
		{"quiet input boosted", -12.0, 0.1, 11.9},
		{"already at ceiling", -0.1, 0.1, 0},
		{"clipping input attenuated", 0, 0.1, -0.1},
		{"silent -inf", math.Inf(-1), 0.1, 0},
		{"below floor", -91, 0.1, 0},
		{"at floor", -90, 0.1, 89.9},
		{"NaN", math.NaN(), 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GainDB(tt.max, tt.headroom); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("GainDB(%v, %v) = %v, want %v", tt.max, tt.headroom, got, tt.want)
			}
		})
	}
}

func TestConditionChain(t *testing.T) {
	cfg := defaultCfg()
	got := ConditionChain(cfg.Audio, 11.9)
	want := "volume=11.90dB,lowpass=f=3000:p=1,highpass=f=300:p=1," +
		"acompressor=threshold=-20dB:ratio=4:attack=5:release=50"
	if got != want {
		t.Errorf("ConditionChain =\n%s\nwant\n%s", got, want)
	}

	a := cfg.Audio
	a.FilterPoles = 2
	a.CompressorRatio = 2.5
	got = ConditionChain(a, -0.5)
	if !strings.HasPrefix(got, "volume=-0.50dB,lowpass=f=3000:p=2,highpass=f=300:p=2,") ||
		!strings.Contains(got, "ratio=2.5:") {
		t.Errorf("ConditionChain = %s", got)
	}
}

func TestConditionChainOrder(t *testing.T) {
	chain := ConditionChain(defaultCfg().Audio, 0)
	order := []string{"volume=", "lowpass=", "highpass=", "acompressor="}
	last := -1
	for _, f := range order {
		i := strings.Index(chain, f)
		if i <= last {
			t.Fatalf("%s out of order in %s", f, chain)
		}
		last = i
	}
}

func TestBuildAudioMix(t *testing.T) {
	tests := []struct {
		mode     config.BaseAudioMode
		hasAudio bool
		wantMode config.BaseAudioMode
		contains []string
		note     bool
	}{
		{config.BaseAudioMix, true, config.BaseAudioMix,
			[]string{"[0:a][2:a]amix=inputs=2:duration=first", "[a]"}, false},
		{config.BaseAudioDrop, true, config.BaseAudioDrop,
			[]string{"[2:a]apad[a]"}, false},
		{config.BaseAudioDuck, true, config.BaseAudioDuck,
			[]string{"[2:a]apad,asplit=2[sc][fa]", "[0:a][sc]sidechaincompress=", "[duck][fa]amix"}, false},
		{config.BaseAudioMix, false, config.BaseAudioDrop,
			[]string{"[2:a]apad[a]"}, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := BuildAudioMix(tt.mode, tt.hasAudio)
			if p.Mode != tt.wantMode {
				t.Errorf("Mode = %s, want %s", p.Mode, tt.wantMode)
			}
			for _, s := range tt.contains {
				if !strings.Contains(p.Graph, s) {
					t.Errorf("graph %q missing %q", p.Graph, s)
				}
			}
			if (p.Note != "") != tt.note {
				t.Errorf("Note = %q", p.Note)
			}
		})
	}
}

// A face track shorter than the base must never end the base audio early:
// every mode either pads the face input or lets the base drive the mix.
func TestBuildAudioMix_FaceTrackPadded(t *testing.T) {
	for _, mode := range []config.BaseAudioMode{config.BaseAudioDrop, config.BaseAudioDuck} {
		g := BuildAudioMix(mode, true).Graph
		if !strings.HasPrefix(g, "[2:a]apad") {
			t.Errorf("%s: face input not padded first: %q", mode, g)
		}
	}
	mix := BuildAudioMix(config.BaseAudioMix, true).Graph
	if !strings.HasPrefix(mix, "[0:a][2:a]") || !strings.Contains(mix, "duration=first") {
		t.Errorf("mix must follow the base duration: %q", mix)
	}
}

// --- BuildCompositePlan ---

func TestBuildCompositePlan(t *testing.T) {
	cfg := defaultCfg()
	plan, err := BuildCompositePlan(cfg, CompositeInputs{
		BasePath:     "/ws/base.mkv",
		BaseDuration: 12,
		BaseHasAudio: true,
		FacePath:     "face.mov",
		FaceProbe:    clip(1280, 720, "30/1", 10, true),
		AudioPath:    "/ws/face.wav",
		OutputPath:   ".final_video.partial-x.mp4",
	})
	if err != nil {
		t.Fatalf("BuildCompositePlan: %v", err)
	}
	if plan.Duration != 12 {
		t.Errorf("Duration = %v", plan.Duration)
	}
	if plan.VideoCodec != "libx264" || plan.AudioCodec != "aac" || plan.PixFmt != "yuv420p" || plan.Preset != "medium" {
		t.Errorf("codecs = %s/%s/%s/%s", plan.VideoCodec, plan.AudioCodec, plan.PixFmt, plan.Preset)
	}
	if strings.Join(plan.ContainerOpts, " ") != "-movflags +faststart" {
		t.Errorf("ContainerOpts = %v", plan.ContainerOpts)
	}
	if plan.MuxQueueSize != 4096 || plan.TimestampFix {
		t.Errorf("retry seed = %d/%v", plan.MuxQueueSize, plan.TimestampFix)
	}
	if !strings.HasPrefix(plan.FilterComplex, "[1:v]scale=355:200") ||
		!strings.HasSuffix(plan.FilterComplex, "[a]") ||
		!strings.Contains(plan.FilterComplex, "[v];[0:a][2:a]amix") {
		t.Errorf("FilterComplex = %s", plan.FilterComplex)
	}
}

func TestBuildCompositePlan_Errors(t *testing.T) {
	cfg := defaultCfg()
	if _, err := BuildCompositePlan(cfg, CompositeInputs{FaceProbe: clip(10, 10, "30/1", 1, true)}); err == nil {
		t.Error("expected error for zero base duration")
	}
	if _, err := BuildCompositePlan(cfg, CompositeInputs{BaseDuration: 1, FaceProbe: &probe.ProbeResult{}}); err == nil {
		t.Error("expected error for face without video")
	}
}

func TestContainerOpts(t *testing.T) {
	for _, out := range []string{"a.mp4", "a.MOV", "a.m4v"} {
		if ContainerOpts(out) == nil {
			t.Errorf("%s should get faststart", out)
		}
	}
	for _, out := range []string{"a.mkv", "a.webm", "a"} {
		if ContainerOpts(out) != nil {
			t.Errorf("%s should get no container opts", out)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := map[float64]string{0: "0", 5: "5", 2.5: "2.5", 1.0 / 3: "0.333333", 10: "10"}
	for in, want := range tests {
		if got := formatSeconds(in); got != want {
			t.Errorf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}
