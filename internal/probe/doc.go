// Package probe provides ffprobe-based media inspection and typed result
// structures. One JSON call per file yields everything the planner needs:
// container duration and size, the primary video stream's geometry, pixel
// format and frame rate, and the audio streams' layout.
//
// [ParseJSON] is exported so tests can feed canned ffprobe output without a
// real binary.
package probe
