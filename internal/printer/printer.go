// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/colonyops/remit/internal/core/styles"
)

type ctxKey struct{}

// Printer writes one line per call. Styling is dropped when the writer is
// not a terminal so piped output stays plain.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, color: color}
}

// NewContext attaches p to ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer on ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	if !p.color {
		s = ansi.Strip(s)
	}
	_, _ = fmt.Fprintln(p.w, s)
}

func (p *Printer) mark(c color.Color, icon, msg string) {
	p.line(lipgloss.NewStyle().Bold(true).Foreground(c).Render(icon) + " " + msg)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...any) {
	p.mark(styles.ColorSuccess, "✔", fmt.Sprintf(format, args...))
}

func (p *Printer) Infof(format string, args ...any) {
	p.mark(styles.ColorPrimary, "•", fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...any) {
	p.mark(styles.ColorWarning, styles.IconWarning, fmt.Sprintf(format, args...))
}

func (p *Printer) Errorf(format string, args ...any) {
	p.mark(styles.ColorError, "✘", fmt.Sprintf(format, args...))
}

// Success writes a success line with a muted detail, such as a file path.
func (p *Printer) Success(title, detail string) {
	p.Successf("%s %s", title, styles.TextMutedStyle.Render(detail))
}

// Header writes a section heading followed by a divider.
func (p *Printer) Header(title string) {
	p.line(styles.CommandHeaderStyle.Render(title))
	p.line(styles.DividerStyle.Render("────────────────────────────────────────"))
}
