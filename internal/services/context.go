package services

import "context"

// runKey indexes the per-run values a context can carry.
type runKey int

const (
	keySource runKey = iota
	keyStage
	keyRequestID
)

func withValue(ctx context.Context, key runKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key runKey) (string, bool) {
	v, _ := ctx.Value(key).(string)
	return v, v != ""
}

// WithSource records the video being processed. Blank paths are ignored.
func WithSource(ctx context.Context, path string) context.Context {
	return withValue(ctx, keySource, path)
}

func SourceFromContext(ctx context.Context) (string, bool) { return lookup(ctx, keySource) }

// WithStage records the pipeline stage. Blank names are ignored.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, keyStage, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return lookup(ctx, keyStage) }

// WithRequestID records the identifier shared by every log line and the
// history row of one run.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, keyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return lookup(ctx, keyRequestID) }
