package probe

import (
	"math"
	"strconv"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index             int
	Codec             string
	Profile           string
	PixFmt            string
	Width             int
	Height            int
	SampleAspectRatio string
	AvgFrameRate      string
	RFrameRate        string
	Duration          float64
	IsAttachedPic     bool
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	SampleFmt     string
	Channels      int
	ChannelLayout string
	SampleRate    int
	Duration      float64
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	AudioStreams []AudioStream
}

// HasVideo reports whether a decodable video stream is present.
func (p *ProbeResult) HasVideo() bool { return p.PrimaryVideo != nil }

// HasAudio reports whether at least one audio stream is present.
func (p *ProbeResult) HasAudio() bool { return len(p.AudioStreams) > 0 }

// PrimaryAudio returns the first audio stream, or nil.
func (p *ProbeResult) PrimaryAudio() *AudioStream {
	if len(p.AudioStreams) == 0 {
		return nil
	}
	return &p.AudioStreams[0]
}

// Duration returns the container duration in seconds, falling back to the
// primary video stream's duration when the container does not report one.
func (p *ProbeResult) Duration() float64 {
	if p.Format.Duration > 0 {
		return p.Format.Duration
	}
	if p.PrimaryVideo != nil && p.PrimaryVideo.Duration > 0 {
		return p.PrimaryVideo.Duration
	}
	return 0
}

// FrameRate returns the primary video frame rate in frames per second, or 0
// when unknown. avg_frame_rate is preferred; r_frame_rate is the fallback.
func (p *ProbeResult) FrameRate() float64 {
	if p.PrimaryVideo == nil {
		return 0
	}
	if fps, ok := ParseRate(p.PrimaryVideo.AvgFrameRate); ok {
		return fps
	}
	if fps, ok := ParseRate(p.PrimaryVideo.RFrameRate); ok {
		return fps
	}
	return 0
}

// FrameRateExpr returns the rational rate string suitable for ffmpeg's fps
// filter ("30000/1001"), or "" when unknown.
func (p *ProbeResult) FrameRateExpr() string {
	if p.PrimaryVideo == nil {
		return ""
	}
	if _, ok := ParseRate(p.PrimaryVideo.AvgFrameRate); ok {
		return p.PrimaryVideo.AvgFrameRate
	}
	if _, ok := ParseRate(p.PrimaryVideo.RFrameRate); ok {
		return p.PrimaryVideo.RFrameRate
	}
	return ""
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// FrameDuration returns the length of one frame in seconds, assuming 30 fps
// when the rate is unknown.
func (p *ProbeResult) FrameDuration() float64 {
	fps := p.FrameRate()
	if fps <= 0 || math.IsInf(fps, 0) {
		fps = 30
	}
	return 1 / fps
}
