// Package outbox delivers the intents returned by core operations.
// Delivery is best-effort: a failed publish is logged and dropped.
package outbox

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
)

// Publisher sends one intent to its destination.
type Publisher interface {
	Publish(ctx context.Context, intent domain.Intent) error
}

// Dispatcher fans intents out to a Publisher.
type Dispatcher struct {
	pub Publisher
	log *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil publisher logs intents instead.
func NewDispatcher(log *slog.Logger, pub Publisher) *Dispatcher {
	if pub == nil {
		pub = NewLogPublisher(log)
	}
	return &Dispatcher{pub: pub, log: log.With("service", "outbox")}
}

// Dispatch publishes every intent in order and returns how many were
// delivered. It never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, intents ...domain.Intent) int {
	delivered := 0
	for _, in := range intents {
		if err := d.pub.Publish(ctx, in); err != nil {
			d.log.WarnContext(ctx, "intent delivery failed",
				slog.String("kind", string(in.Kind)),
				slog.String("learner_id", in.LearnerID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		delivered++
	}
	return delivered
}

// LogPublisher writes intents to the log.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher creates a publisher that logs each intent at info level.
func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("publisher", "log")}
}

// Publish logs the intent and never fails.
func (p *LogPublisher) Publish(ctx context.Context, intent domain.Intent) error {
	p.log.InfoContext(ctx, "intent",
		slog.String("kind", string(intent.Kind)),
		slog.String("learner_id", intent.LearnerID.String()),
		slog.Any("payload", intent.Payload),
	)
	return nil
}
