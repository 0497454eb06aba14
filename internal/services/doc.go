// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations (ffmpeg, speech providers).
//
// Key responsibilities:
//   - Context helpers that stamp the run request ID, the stage name, and the
//     source video for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (bad input vs. flaky network vs. unintelligible audio) and pick
//     a process exit code.
package services
