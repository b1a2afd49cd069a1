package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/notify"
	"github.com/colonyops/remit/internal/core/styles"
)

const (
	maxToasts         = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

// toastTTL is how long a toast of the given level stays on screen. Failed
// actions linger so the operator can read which invoice was affected.
func toastTTL(level notify.Level) time.Duration {
	switch level {
	case notify.LevelError:
		return 10 * time.Second
	case notify.LevelWarning:
		return 8 * time.Second
	default:
		return 5 * time.Second
	}
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	repeats      int
}

// ToastController holds the toast stack, oldest first.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds n to the stack. A notification matching one already showing
// replaces it at the bottom with a fresh TTL and a repeat count instead of
// stacking a copy. The oldest toast is evicted past maxToasts.
func (c *ToastController) Push(n notify.Notification) {
	t := toast{notification: n, remaining: toastTTL(n.Level), repeats: 1}
	for i, existing := range c.toasts {
		if existing.notification.Level == n.Level && existing.notification.Message == n.Message {
			t.repeats = existing.repeats + 1
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			break
		}
	}

	c.toasts = append(c.toasts, t)
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
}

// Tick counts every toast down by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

func (c *ToastController) DismissAll()       { c.toasts = c.toasts[:0] }
func (c *ToastController) HasToasts() bool   { return len(c.toasts) > 0 }
func (c *ToastController) Toasts() []toast   { return c.toasts }
func (c *ToastController) Ticking() bool     { return c.ticking }
func (c *ToastController) SetTicking(v bool) { c.ticking = v }

// ToastView draws the stack in the lower-right corner.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, t := range toasts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(renderToast(t))
	}
	return sb.String()
}

func renderToast(t toast) string {
	icon, style := styles.IconNotifyInfo, styles.ToastInfoStyle
	switch t.notification.Level {
	case notify.LevelError:
		icon, style = styles.IconNotifyError, styles.ToastErrorStyle
	case notify.LevelWarning:
		icon, style = styles.IconNotifyWarning, styles.ToastWarningStyle
	}

	text := icon + " " + t.notification.Message
	if t.repeats > 1 {
		text += fmt.Sprintf(" (x%d)", t.repeats)
	}
	return style.Width(toastWidth).Render(text)
}

// Overlay composites the stack over background.
func (v *ToastView) Overlay(background string, width, height int) string {
	content := v.View()
	if content == "" {
		return background
	}

	layer := lipgloss.NewLayer(content).
		X(max(width-lipgloss.Width(content)-1, 0)).
		Y(max(height-lipgloss.Height(content), 0)).
		Z(2)
	return lipgloss.NewCompositor(lipgloss.NewLayer(background), layer).Render()
}
