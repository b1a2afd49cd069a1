// Package testbus runs a real EventBus for tests and records every event
// published on it.
package testbus

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/remit/internal/core/eventbus"
)

const (
	// Patience is how long AssertPublished waits for an event.
	Patience = 500 * time.Millisecond
	poll     = 5 * time.Millisecond
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus embeds a started EventBus. Events are recorded when queued, before
// subscribers run.
type Bus struct {
	*eventbus.EventBus

	mu  sync.Mutex
	log []RecordedEvent
}

// New starts a bus that is stopped when t finishes.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{EventBus: eventbus.New(64)}
	tb.OnPublish(func(e eventbus.Event, p any) {
		tb.mu.Lock()
		tb.log = append(tb.log, RecordedEvent{Event: e, Payload: p})
		tb.mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go tb.Start(ctx)

	return tb
}

// Events returns a copy of everything recorded so far.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.log)
}

// Last returns the payload of the newest event named event.
func (tb *Bus) Last(event eventbus.Event) (any, bool) {
	for _, r := range slices.Backward(tb.Events()) {
		if r.Event == event {
			return r.Payload, true
		}
	}
	return nil, false
}

// Count returns how many events named event were recorded.
func (tb *Bus) Count(event eventbus.Event) int {
	n := 0
	for _, r := range tb.Events() {
		if r.Event == event {
			n++
		}
	}
	return n
}

// Reset forgets recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	tb.log = nil
	tb.mu.Unlock()
}

// WaitFor polls until event is recorded or timeout passes.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if tb.Count(event) > 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(poll)
	}
}

// AssertPublished fails t unless event is recorded within Patience.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	assert.Eventually(t, func() bool { return tb.Count(event) > 0 }, Patience, poll,
		"expected %q to be published", event)
}

// AssertNotPublished fails t if event is recorded within wait. A zero wait
// checks once.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if wait <= 0 {
		assert.Zero(t, tb.Count(event), "expected %q not to be published", event)
		return
	}
	assert.Never(t, func() bool { return tb.Count(event) > 0 }, wait, poll,
		"expected %q not to be published", event)
}
