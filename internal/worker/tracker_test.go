package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geomm/pizza-delivery/internal/service"
)

// scriptedLister returns one canned response per poll, repeating the last
// one once the script runs out.
type scriptedLister struct {
	mu    sync.Mutex
	calls int
	steps []func() ([]service.MailEvent, error)
}

func (l *scriptedLister) Events(_ context.Context, _ string) ([]service.MailEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	if i >= len(l.steps) {
		i = len(l.steps) - 1
	}
	l.calls++
	return l.steps[i]()
}

func events(names ...string) func() ([]service.MailEvent, error) {
	return func() ([]service.MailEvent, error) {
		evs := make([]service.MailEvent, 0, len(names))
		for _, name := range names {
			evs = append(evs, service.MailEvent{Event: name})
		}
		return evs, nil
	}
}

func TestAwaitDelivered(t *testing.T) {
	lister := &scriptedLister{steps: []func() ([]service.MailEvent, error){
		events("accepted"),
		events("accepted", "delivered"),
	}}
	tracker := NewDeliveryTracker(lister, 2*time.Millisecond, time.Second)

	outcome := tracker.Await(context.Background(), "<msg_1@domain>")
	assert.Equal(t, service.DeliveryDelivered, outcome)
}

func TestAwaitFailedAndRejected(t *testing.T) {
	cases := []struct {
		event   string
		outcome service.DeliveryOutcome
	}{
		{"failed", service.DeliveryFailed},
		{"rejected", service.DeliveryRejected},
	}
	for _, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			lister := &scriptedLister{steps: []func() ([]service.MailEvent, error){
				events("accepted", tc.event),
			}}
			tracker := NewDeliveryTracker(lister, 2*time.Millisecond, time.Second)

			assert.Equal(t, tc.outcome, tracker.Await(context.Background(), "<msg_1@domain>"))
		})
	}
}

func TestAwaitKeepsPollingThroughQueryErrors(t *testing.T) {
	lister := &scriptedLister{steps: []func() ([]service.MailEvent, error){
		func() ([]service.MailEvent, error) { return nil, errors.New("temporarily unavailable") },
		events("delivered"),
	}}
	tracker := NewDeliveryTracker(lister, 2*time.Millisecond, time.Second)

	assert.Equal(t, service.DeliveryDelivered, tracker.Await(context.Background(), "<msg_1@domain>"))
}

func TestAwaitTimesOut(t *testing.T) {
	lister := &scriptedLister{steps: []func() ([]service.MailEvent, error){
		events("accepted"),
	}}
	tracker := NewDeliveryTracker(lister, 2*time.Millisecond, 20*time.Millisecond)

	assert.Equal(t, service.DeliveryTimedOut, tracker.Await(context.Background(), "<msg_1@domain>"))
}

func TestAwaitCanceled(t *testing.T) {
	lister := &scriptedLister{steps: []func() ([]service.MailEvent, error){
		events("accepted"),
	}}
	tracker := NewDeliveryTracker(lister, 2*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	assert.Equal(t, service.DeliveryCanceled, tracker.Await(ctx, "<msg_1@domain>"))
}
