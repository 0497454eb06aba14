package logging

import (
	"context"
	"log/slog"

	"vidscribe/internal/services"
)

// Keys shared by every log line that describes a run.
const (
	FieldComponent     = "component"
	FieldStage         = "stage"  // probe, extract, recognize, write
	FieldSource        = "source" // the video being transcribed
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint" // what the operator should check next
	FieldImpact        = "impact"     // what the warning means for the output
)

// WithContext adds the source, stage and request ID carried by ctx to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	lookups := []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldSource, services.SourceFromContext},
		{FieldStage, services.StageFromContext},
		{FieldCorrelationID, services.RequestIDFromContext},
	}
	for _, l := range lookups {
		if v, ok := l.get(ctx); ok {
			args = append(args, slog.String(l.key, v))
		}
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
