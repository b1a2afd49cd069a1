package eventbus

import "sync"

// hookList is an append-only set of callbacks safe for concurrent use.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// each calls run for every hook registered so far. Hooks added while it
// runs are not visited.
func (h *hookList[F]) each(run func(F)) {
	h.mu.RLock()
	fns := h.fns[:len(h.fns):len(h.fns)]
	h.mu.RUnlock()
	for _, fn := range fns {
		run(fn)
	}
}

type hooks struct {
	publish hookList[func(Event, any)]
	drop    hookList[func(Event, any)]
	panics  hookList[func(Event, any, any)]
}

// OnPublish registers fn to run after an event is queued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.publish.add(fn) }

// OnDrop registers fn to run when an event is discarded because the buffer
// is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.drop.add(fn) }

// OnPanic registers fn to run with the recovered value when a subscriber
// panics. A panicking hook is itself recovered.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panics.add(fn) }

// send queues an event without blocking. A nil bus discards it.
func (bus *EventBus) send(event Event, payload any) {
	if bus == nil {
		return
	}

	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.hooks.publish.each(func(fn func(Event, any)) { fn(event, payload) })
	default:
		bus.hooks.drop.each(func(fn func(Event, any)) { fn(event, payload) })
	}
}

func (bus *EventBus) panicked(event Event, payload, recovered any) {
	bus.hooks.panics.each(func(fn func(Event, any, any)) {
		defer func() { _ = recover() }()
		fn(event, payload, recovered)
	})
}
