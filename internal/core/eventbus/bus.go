package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers events to subscribers on a single dispatch goroutine.
// Publishing never blocks; events are dropped when the buffer is full.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with a buffer of size events. Call Start to begin
// dispatching.
func New(size int) *EventBus {
	if size < 1 {
		size = 1
	}
	return &EventBus{
		ch:   make(chan envelope, size),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	fns := make([]func(any), len(bus.subs[env.event]))
	copy(fns, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.panicked(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
}

func subscribeTyped[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishFollowUpScheduled(p FollowUpScheduledPayload) {
	bus.send(EventFollowUpScheduled, p)
}

func (bus *EventBus) SubscribeFollowUpScheduled(fn func(FollowUpScheduledPayload)) {
	subscribeTyped(bus, EventFollowUpScheduled, fn)
}

func (bus *EventBus) PublishInvoicePaid(p InvoicePaidPayload) {
	bus.send(EventInvoicePaid, p)
}

func (bus *EventBus) SubscribeInvoicePaid(fn func(InvoicePaidPayload)) {
	subscribeTyped(bus, EventInvoicePaid, fn)
}

func (bus *EventBus) PublishEmailDrafted(p EmailDraftedPayload) {
	bus.send(EventEmailDrafted, p)
}

func (bus *EventBus) SubscribeEmailDrafted(fn func(EmailDraftedPayload)) {
	subscribeTyped(bus, EventEmailDrafted, fn)
}

func (bus *EventBus) PublishRulesSaved(p RulesSavedPayload) {
	bus.send(EventRulesSaved, p)
}

func (bus *EventBus) SubscribeRulesSaved(fn func(RulesSavedPayload)) {
	subscribeTyped(bus, EventRulesSaved, fn)
}

func (bus *EventBus) PublishFixturesImported(p FixturesImportedPayload) {
	bus.send(EventFixturesImported, p)
}

func (bus *EventBus) SubscribeFixturesImported(fn func(FixturesImportedPayload)) {
	subscribeTyped(bus, EventFixturesImported, fn)
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribeTyped(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) {
	bus.send(EventTuiStarted, p)
}

func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	subscribeTyped(bus, EventTuiStarted, fn)
}

func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) {
	bus.send(EventTuiStopped, p)
}

func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	subscribeTyped(bus, EventTuiStopped, fn)
}
