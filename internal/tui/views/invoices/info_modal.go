package invoices

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/remit/internal/core/styles"
)

const (
	infoModalMaxWidth  = 90
	infoModalMaxHeight = 32
	infoModalMargin    = 4
	infoModalChrome    = 6
	infoModalPadding   = 4
)

// InfoModal shows the patient summary and activity history as rendered
// markdown in a scrollable viewport.
type InfoModal struct {
	title    string
	markdown string
	viewport viewport.Model
}

// NewInfoModal creates the modal sized to the terminal.
func NewInfoModal(title, markdown string, width, height int) *InfoModal {
	modalWidth := max(min(width-infoModalMargin, infoModalMaxWidth), 20)
	modalHeight := max(min(height-infoModalMargin, infoModalMaxHeight), infoModalChrome+2)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-infoModalPadding),
		viewport.WithHeight(modalHeight-infoModalChrome),
	)

	m := &InfoModal{title: title, markdown: markdown, viewport: vp}
	m.render(modalWidth - infoModalPadding)
	return m
}

func (m *InfoModal) render(width int) {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		m.viewport.SetContent(m.markdown)
		return
	}

	rendered, err := renderer.Render(m.markdown)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		m.viewport.SetContent(m.markdown)
		return
	}
	m.viewport.SetContent(strings.Trim(rendered, "\n"))
}

// Update forwards scroll input to the viewport.
func (m *InfoModal) Update(msg tea.Msg) {
	m.viewport, _ = m.viewport.Update(msg)
}

// ScrollUp scrolls the viewport up.
func (m *InfoModal) ScrollUp() { m.viewport.ScrollUp(1) }

// ScrollDown scrolls the viewport down.
func (m *InfoModal) ScrollDown() { m.viewport.ScrollDown(1) }

// Markdown returns the unrendered content.
func (m *InfoModal) Markdown() string { return m.markdown }

// View renders the modal box.
func (m *InfoModal) View() string {
	scrollInfo := ""
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		scrollInfo = styles.TextMutedStyle.Render(fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title+scrollInfo),
		"",
		m.viewport.View(),
		styles.ModalHelpStyle.Render("↑/↓ scroll  enter/esc close"),
	)
	return styles.ModalStyle.Render(content)
}
