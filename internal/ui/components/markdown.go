package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// DefaultMarkdownStyle is the glamour style used when none is configured.
// styles.AutoStyle picks dark or light from the terminal background.
const DefaultMarkdownStyle = styles.DarkStyle

// Markdown renders assistant text with glamour, word-wrapped to a width.
// The underlying renderer is rebuilt whenever the width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func NewMarkdown(style string, width int) *Markdown {
	if style == "" {
		style = DefaultMarkdownStyle
	}
	m := &Markdown{style: style}
	m.SetWidth(width)
	return m
}

// Width returns the current wrap width.
func (m *Markdown) Width() int { return m.width }

// SetWidth rebuilds the renderer for a new wrap width. Widths under 10 are
// raised to 10.
func (m *Markdown) SetWidth(width int) {
	width = max(width, 10)
	if m.renderer != nil && width == m.width {
		return
	}
	m.width = width

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if m.style == styles.AutoStyle {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Render returns text as styled terminal output. Without a working renderer
// the text is returned as written.
func (m *Markdown) Render(text string) string {
	if m == nil || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
