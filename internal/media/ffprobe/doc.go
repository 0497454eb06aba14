// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe against a video and returns a Result whose helpers
// answer the questions the pipeline asks before extracting audio: is there
// an audio stream at all, and how long is the media.
package ffprobe
