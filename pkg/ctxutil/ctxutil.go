// Package ctxutil carries learner and run identifiers through a context so
// that deeply nested log lines can be correlated with the operation that
// started them.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey string

const (
	learnerIDKey ctxKey = "learner_id"
	runIDKey     ctxKey = "run_id"
)

// WithLearnerID stores the learner ID in the context.
func WithLearnerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, learnerIDKey, id)
}

// LearnerIDFromCtx extracts the learner ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func LearnerIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(learnerIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithRunID stores a batch or command run ID in the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromCtx extracts the run ID from the context.
// Returns an empty string if absent.
func RunIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// LogAttrs returns the identifiers present in ctx as slog attributes.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RunIDFromCtx(ctx); id != "" {
		attrs = append(attrs, slog.String("run_id", id))
	}
	if id, ok := LearnerIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("learner_id", id.String()))
	}
	return attrs
}
