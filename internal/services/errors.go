package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrAuth          = errors.New("authentication failure")
	// ErrNoSpeech marks audio the recognizer could not turn into any text.
	ErrNoSpeech = errors.New("no speech recognized")
)

// Process exit codes returned by the CLI.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// Wrap tags err with marker, one of the sentinels above, and prefixes it
// with "stage: operation: message", skipping blank parts. A nil marker is
// treated as ErrTransient. err may be nil.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := buildDetail(stage, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ExitUsage
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// IsRetryable reports whether a failure is worth another attempt: transient
// provider errors and timeouts, unless the caller gave up.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// buildDetail joins the non-blank parts with ": ".
func buildDetail(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "service failure"
	}
	return strings.Join(kept, ": ")
}
