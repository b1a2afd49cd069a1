package tui

import (
	"fmt"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/notify"
)

// maxPending caps undrained notifications; the oldest are discarded first.
const maxPending = 32

// drainNotificationsMsg tells the model to move pending notifications
// into toasts.
type drainNotificationsMsg struct{}

// NotificationBuffer hands notifications from the bus dispatch goroutine
// to the Bubble Tea loop. Any number of pushes between two drains wake the
// loop once.
type NotificationBuffer struct {
	mu      sync.Mutex
	pending []notify.Notification
	dropped int

	wake chan struct{}
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{wake: make(chan struct{}, 1)}
}

// Push queues n, stamping CreatedAt when unset.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	if len(b.pending) == maxPending {
		b.pending = b.pending[1:]
		b.dropped++
	}
	b.pending = append(b.pending, n)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Subscribe routes NotificationPublished events on bus into the buffer.
func (b *NotificationBuffer) Subscribe(bus *eventbus.EventBus) {
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		b.Push(notify.Notification{Level: p.Level, Message: p.Message})
	})
}

// Len reports how many notifications are waiting.
func (b *NotificationBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Drain returns pending notifications oldest first and empties the
// buffer. When some were discarded for space, a warning saying how many
// leads the result.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	pending, dropped := b.pending, b.dropped
	b.pending, b.dropped = nil, 0
	b.mu.Unlock()

	if dropped == 0 {
		return pending
	}
	lost := notify.Notification{
		Level:     notify.LevelWarning,
		Message:   fmt.Sprintf("%d older notifications discarded", dropped),
		CreatedAt: time.Now(),
	}
	return append([]notify.Notification{lost}, pending...)
}

// WaitForSignal returns a command that blocks until something is pushed.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.wake
		return drainNotificationsMsg{}
	}
}
