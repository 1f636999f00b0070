package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	attemptKey contextKey = "attempt"
	passKey    contextKey = "pass"
	stageKey   contextKey = "stage"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAttempt annotates context with the 1-based attempt number.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	if attempt <= 0 {
		return ctx
	}
	return context.WithValue(ctx, attemptKey, attempt)
}

// AttemptFromContext extracts the attempt number if present.
func AttemptFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(attemptKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithPass annotates context with the pass number within the attempt.
func WithPass(ctx context.Context, pass int) context.Context {
	if pass <= 0 {
		return ctx
	}
	return context.WithValue(ctx, passKey, pass)
}

// PassFromContext extracts the pass number if present.
func PassFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(passKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithStage annotates context with the loop stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
