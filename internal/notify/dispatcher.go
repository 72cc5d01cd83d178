package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink delivers one event to one channel (chat, email, ...).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

const publishTimeout = 10 * time.Second

// Dispatcher fans events out to every configured sink. Delivery is
// best-effort and asynchronous: failures are logged warnings and never
// propagate to the operation that raised the event.
type Dispatcher struct {
	sinks []Sink
	log   *zap.Logger
}

func NewDispatcher(log *zap.Logger, sinks []Sink) *Dispatcher {
	return &Dispatcher{
		sinks: sinks,
		log:   log.Named("notify"),
	}
}

// Dispatch publishes the event on a background goroutine. Call it only after
// the triggering transaction has committed.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		for _, sink := range d.sinks {
			if err := sink.Publish(ctx, event); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err),
				)
			}
		}
	}()
}
