package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/notify"
	"github.com/colonyops/remit/internal/core/styles"
)

func info(msg string) notify.Notification {
	return notify.Notification{Level: notify.LevelInfo, Message: msg}
}

func TestToastController_Push(t *testing.T) {
	c := NewToastController()
	c.Push(info("INV-003 marked paid"))
	c.Push(notify.Notification{Level: notify.LevelError, Message: "export failed"})

	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, 5*time.Second, toasts[0].remaining)
	assert.Equal(t, 10*time.Second, toasts[1].remaining, "errors stay longer")
}

func TestToastController_Push_evictsOldest(t *testing.T) {
	c := NewToastController()
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		c.Push(info("reminder " + id))
	}

	toasts := c.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, "reminder 3", toasts[0].notification.Message)
}

func TestToastController_Push_collapsesRepeats(t *testing.T) {
	c := NewToastController()
	c.Push(info("rules saved"))
	c.Push(info("statement written"))
	c.Tick(2 * time.Second)
	c.Push(info("rules saved"))

	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "rules saved", toasts[1].notification.Message, "repeat moves to the bottom")
	assert.Equal(t, 2, toasts[1].repeats)
	assert.Equal(t, 5*time.Second, toasts[1].remaining, "repeat resets the TTL")

	c.Push(notify.Notification{Level: notify.LevelError, Message: "rules saved"})
	assert.Len(t, c.Toasts(), 3, "a different level is a different toast")
}

func TestToastController_Tick(t *testing.T) {
	c := NewToastController()
	c.Push(info("expires"))
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "survives"})

	c.Tick(time.Second)
	assert.Equal(t, 4*time.Second, c.Toasts()[0].remaining)

	c.Tick(4 * time.Second)
	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].notification.Message)

	c.DismissAll()
	assert.False(t, c.HasToasts())
}

func TestToastView_View(t *testing.T) {
	c := NewToastController()
	v := NewToastView(c)
	assert.Empty(t, v.View())

	c.Push(notify.Notification{Level: notify.LevelError, Message: "older"})
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "newer"})
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "newer"})

	out := v.View()
	assert.Contains(t, out, styles.IconNotifyError+" older")
	assert.Contains(t, out, styles.IconNotifyWarning+" newer (x2)")
	assert.Less(t, strings.Index(out, "older"), strings.Index(out, "newer"))
}

func TestToastView_Overlay(t *testing.T) {
	c := NewToastController()
	v := NewToastView(c)

	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", 120)+"\n", 40), "\n")
	assert.Equal(t, bg, v.Overlay(bg, 120, 40))

	c.Push(info("positioned"))
	lines := strings.Split(v.Overlay(bg, 120, 40), "\n")

	row := -1
	for i, line := range lines {
		if strings.Contains(line, "positioned") {
			row = i
			break
		}
	}
	require.NotEqual(t, -1, row)
	assert.Greater(t, row, 20, "toasts sit at the bottom")
}
