package history

import "time"

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one processed video.
type Run struct {
	ID            string
	RequestID     string
	SourcePath    string
	OutputPath    string
	Provider      string
	Language      string
	Status        Status
	ChunksTotal   int
	ChunksSkipped int
	Characters    int
	AudioSeconds  float64
	Duration      time.Duration
	ErrorMessage  string
	CreatedAt     time.Time
}

// Stats aggregates the rows in the log.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
}
