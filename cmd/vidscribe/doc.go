// Package main hosts the vidscribe CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and logging once, then hands
// off to the internal packages: pipeline for transcription, transcript for
// accuracy comparison, history for the run log, and preflight for
// environment checks. Keep commands thin; behavior belongs in internal/.
package main
