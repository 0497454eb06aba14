// Package audio turns a video into recognizer-ready audio.
//
// Extractor shells out to ffmpeg to pull the first audio stream of a video
// and convert it to 16-bit PCM WAV at the configured rate and channel count
// in a single pass. The WAV is then measured with go-audio and cut into
// fixed-length windows (PlanChunks, Cut, Split) so each piece fits a
// synchronous recognition request.
package audio
