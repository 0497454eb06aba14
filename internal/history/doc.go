// Package history keeps a SQLite log of transcription runs.
//
// Every processed video produces one row recording where the transcript went,
// which provider produced it, how many chunks were skipped, and why a run
// failed. The database lives at <state_dir>/history.db and its schema is
// created from embedded, versioned migrations applied in a single
// transaction.
package history
