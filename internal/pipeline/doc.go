// Package pipeline turns video files into transcripts.
//
// A Processor runs one video through a fixed sequence of stages: probe the
// container, extract its first audio track as PCM WAV, cut the WAV into
// fixed-length chunks, recognize each chunk in order, then write the joined
// text. Chunks that yield no speech, or whose request fails, are skipped so a
// single bad minute does not lose the rest of the transcript. Authentication
// failures and cancellation abort the file.
//
// ProcessBatch applies the same sequence to every *.mp4 in a directory while
// holding an exclusive lock so two batch runs never interleave.
package pipeline
