package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/notify"
)

func newToastModel() Model {
	ctrl := NewToastController()
	return Model{
		toastController: ctrl,
		toastView:       NewToastView(ctrl),
		notifications:   NewNotificationBuffer(),
	}
}

// deliver pushes n through the notification buffer and the drain message,
// the same path a bus notification takes.
func deliver(t *testing.T, m Model, n notify.Notification) Model {
	t.Helper()
	m.notifications.Push(n)
	result, cmd := m.Update(drainNotificationsMsg{})
	require.NotNil(t, cmd)
	return result.(Model)
}

// runTicks feeds tick messages until the chain stops and returns the count.
func runTicks(t *testing.T, m Model, limit int) (Model, int) {
	t.Helper()
	count := 0
	for {
		result, cmd := m.Update(toastTickMsg(time.Now()))
		m = result.(Model)
		count++
		if cmd == nil {
			return m, count
		}
		if count > limit {
			t.Fatalf("tick chain exceeded %d ticks; toasts remaining: %d", limit, len(m.toastController.Toasts()))
		}
	}
}

func TestToastUpdateLoop_tick_chain_expires_at_TTL(t *testing.T) {
	m := newToastModel()
	m.toastController.Push(notify.Notification{Level: notify.LevelInfo, Message: "test"})

	m, ticks := runTicks(t, m, 100)

	assert.Equal(t, int(toastTTL(notify.LevelInfo)/toastTickInterval), ticks)
	assert.False(t, m.toastController.HasToasts())
	assert.False(t, m.toastController.Ticking())
}

func TestToastUpdateLoop_drain_starts_tick(t *testing.T) {
	m := newToastModel()

	m = deliver(t, m, notify.Notification{Level: notify.LevelError, Message: "payment failed"})

	require.True(t, m.toastController.HasToasts())
	assert.Equal(t, "payment failed", m.toastController.Toasts()[0].notification.Message)
	assert.True(t, m.toastController.Ticking())
}

func TestToastUpdateLoop_second_notification_during_chain(t *testing.T) {
	m := newToastModel()
	m = deliver(t, m, notify.Notification{Level: notify.LevelInfo, Message: "first"})

	// Halfway through the first toast's TTL.
	for range 25 {
		result, _ := m.Update(toastTickMsg(time.Now()))
		m = result.(Model)
	}

	m = deliver(t, m, notify.Notification{Level: notify.LevelInfo, Message: "second"})
	require.Len(t, m.toastController.Toasts(), 2)

	m, ticks := runTicks(t, m, 200)
	assert.False(t, m.toastController.HasToasts())
	// The second toast outlives the first by 25 ticks.
	assert.Equal(t, 50, ticks)
}

func TestToastUpdateLoop_new_toast_after_chain_stops(t *testing.T) {
	m := newToastModel()
	m = deliver(t, m, notify.Notification{Level: notify.LevelInfo, Message: "first"})
	m, _ = runTicks(t, m, 100)
	require.False(t, m.toastController.HasToasts())
	require.False(t, m.toastController.Ticking())

	m = deliver(t, m, notify.Notification{Level: notify.LevelInfo, Message: "second"})

	assert.True(t, m.toastController.HasToasts())
	assert.True(t, m.toastController.Ticking(), "a fresh chain starts")
}
