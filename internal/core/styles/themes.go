package styles

import (
	"image/color"
	"maps"
	"slices"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Accent     color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Caution    color.Color
	Error      color.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// swatch lists a theme as hex strings, in Palette field order minus
// Surface, which is derived from the background.
type swatch [10]string

// surfaceLift is how far the surface color sits from the background
// toward the muted color.
const surfaceLift = 0.3

func (s swatch) palette() Palette {
	c := func(i int) color.Color { return lipgloss.Color(s[i]) }

	surface := c(5)
	bg, err1 := colorful.Hex(s[5])
	muted, err2 := colorful.Hex(s[4])
	if err1 == nil && err2 == nil {
		surface = lipgloss.Color(bg.BlendLab(muted, surfaceLift).Clamped().Hex())
	}

	return Palette{
		Primary:    c(0),
		Secondary:  c(1),
		Accent:     c(2),
		Foreground: c(3),
		Muted:      c(4),
		Background: c(5),
		Surface:    surface,
		Success:    c(6),
		Warning:    c(7),
		Caution:    c(8),
		Error:      c(9),
	}
}

//	primary, secondary, accent, foreground, muted, background,
//	success, warning, caution, error
var swatches = map[string]swatch{
	"tokyo-night": {"#7aa2f7", "#7dcfff", "#bb9af7", "#c0caf5", "#565f89", "#1a1b26", "#9ece6a", "#ff9e64", "#e0af68", "#f7768e"},
	"gruvbox":     {"#83a598", "#8ec07c", "#d3869b", "#ebdbb2", "#665c54", "#282828", "#b8bb26", "#fe8019", "#fabd2f", "#fb4934"},
	"nord":        {"#88c0d0", "#8fbcbb", "#b48ead", "#eceff4", "#4c566a", "#2e3440", "#a3be8c", "#d08770", "#ebcb8b", "#bf616a"},
	"rose-pine":   {"#9ccfd8", "#31748f", "#c4a7e7", "#e0def4", "#6e6a86", "#191724", "#9ccfd8", "#ebbcba", "#f6c177", "#eb6f92"},
	"solarized":   {"#268bd2", "#2aa198", "#6c71c4", "#93a1a1", "#586e75", "#002b36", "#859900", "#cb4b16", "#b58900", "#dc322f"},
}

var themes = func() map[string]Palette {
	out := make(map[string]Palette, len(swatches))
	for name, s := range swatches {
		out[name] = s.palette()
	}
	return out
}()

// ThemeNames returns the built-in theme names, sorted.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(themes))
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

func colorHexPtr(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
// Used for the patient activity history.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	accent := colorHexPtr(ColorAccent)

	cfg.Document.Color = fg
	cfg.Document.Margin = nil
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = colorHexPtr(ColorSurface)
	cfg.H2.Color = primary
	cfg.H3.Color = accent

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.Emph.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.Table.Color = fg

	return cfg
}
