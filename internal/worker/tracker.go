package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/geomm/pizza-delivery/internal/service"
)

// EventLister is the slice of the mail client the tracker needs.
type EventLister interface {
	Events(ctx context.Context, messageID string) ([]service.MailEvent, error)
}

// DeliveryTracker polls the notification provider's event log until a
// dispatched message reaches a terminal outcome. This is the pipeline's
// only long-lived suspension point, so the loop honors both its timeout
// budget and context cancellation.
type DeliveryTracker struct {
	mail     EventLister
	interval time.Duration
	timeout  time.Duration
}

func NewDeliveryTracker(mail EventLister, interval, timeout time.Duration) *DeliveryTracker {
	return &DeliveryTracker{
		mail:     mail,
		interval: interval,
		timeout:  timeout,
	}
}

// Await blocks until the message is delivered, fails, is rejected, the
// timeout elapses, or ctx is canceled. Transient query errors and
// intermediate events (accepted etc.) keep the poll going.
func (t *DeliveryTracker) Await(ctx context.Context, messageID string) service.DeliveryOutcome {
	log := slog.With("message_id", messageID)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("delivery tracking canceled")
			return service.DeliveryCanceled
		case <-deadline.C:
			log.Warn("delivery tracking timed out", "timeout", t.timeout)
			return service.DeliveryTimedOut
		case <-ticker.C:
			events, err := t.mail.Events(ctx, messageID)
			if err != nil {
				log.Warn("event query failed, will retry", "error", err)
				continue
			}
			if outcome, terminal := classify(events); terminal {
				log.Info("delivery outcome observed", "outcome", outcome)
				return outcome
			}
		}
	}
}

func classify(events []service.MailEvent) (service.DeliveryOutcome, bool) {
	for _, ev := range events {
		switch ev.Event {
		case "delivered":
			return service.DeliveryDelivered, true
		case "failed":
			return service.DeliveryFailed, true
		case "rejected":
			return service.DeliveryRejected, true
		}
	}
	return "", false
}
