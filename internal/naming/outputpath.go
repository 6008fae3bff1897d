package naming

import (
	"path/filepath"
	"strings"
)

// WorkspacePrefix prefixes every per-run scratch directory.
const WorkspacePrefix = "camstitch-"

// PartialOutputPath returns the hidden in-progress path for output, in the
// same directory so the final rename stays on one filesystem:
//
//	/videos/final.mp4 -> /videos/.final.partial-<runID>.mp4
//
// The extension is kept so ffmpeg picks the right muxer.
func PartialOutputPath(output, runID string) string {
	dir := filepath.Dir(output)
	base := filepath.Base(output)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, "."+stem+".partial-"+runID+ext)
}

// PartialWAVPath returns the in-progress path for a WAV destination:
// <dst>.partial-<runID>.wav.
func PartialWAVPath(dst, runID string) string {
	return dst + ".partial-" + runID + ".wav"
}

// LockPath returns the hidden advisory lock file guarding output:
//
//	/videos/final.mp4 -> /videos/.final.mp4.lock
//
// The file is never removed; unlinking a flock file lets two runs lock
// different inodes under the same name.
func LockPath(output string) string {
	return filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".lock")
}

// IsScratchName reports whether a file name was produced by one of the
// helpers above, so discovery can ignore leftovers from interrupted runs.
func IsScratchName(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") ||
		strings.Contains(base, ".partial-") ||
		strings.HasSuffix(base, ".lock")
}
