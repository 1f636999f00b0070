package logging

import (
	"context"
	"log/slog"

	"compressr/internal/services"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldAttempt is the structured logging key for the 1-based attempt number.
	FieldAttempt = "attempt"
	// FieldPass is the structured logging key for the pass number within an attempt.
	FieldPass = "pass"
	// FieldStage is the structured logging key for loop stage names.
	FieldStage = "stage"
	// FieldInput is the structured logging key for the input media path.
	FieldInput = "input"
	// FieldOutput is the structured logging key for the output media path.
	FieldOutput = "output"
)

// ContextFields extracts run, attempt, pass and stage attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if attempt, ok := services.AttemptFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldAttempt, attempt))
	}
	if pass, ok := services.PassFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldPass, pass))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
