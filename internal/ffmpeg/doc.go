// Package ffmpeg builds and executes ffmpeg commands with a shared argument
// skeleton and unified retry logic.
//
//   - builder.go: argv for the concat, volumedetect, conditioning and
//     composite passes, plus the concat demuxer list file
//   - executor.go: run one command, capture stderr, optional tee and
//     -progress reporting
//   - errors.go: stderr classification and volumedetect parsing
//   - retry.go: one fix per attempt (mux queue, then timestamps)
package ffmpeg
