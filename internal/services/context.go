package services

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
	videoKey
)

// WithRunID tags ctx with the conversion run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, runIDKey)
}

// WithStage tags ctx with the pipeline stage name (extract, ocr, write).
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return value(ctx, stageKey)
}

// WithVideo tags ctx with the source video being converted.
func WithVideo(ctx context.Context, path string) context.Context {
	return withValue(ctx, videoKey, path)
}

// VideoFromContext returns the source video path if present.
func VideoFromContext(ctx context.Context) (string, bool) {
	return value(ctx, videoKey)
}

// withValue leaves ctx untouched for blank values so an outer tag survives.
func withValue(ctx context.Context, key contextKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
