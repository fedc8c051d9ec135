package components

import (
	"github.com/abhisek/secmentor/internal/ui/theme"
)

// Button is a single-line control. A disabled button renders dimmed and
// never shows focus.
type Button struct {
	Label    string
	Focused  bool
	Disabled bool
}

func (b Button) View() string {
	switch {
	case b.Disabled:
		return theme.Disabled.Render("  " + b.Label)
	case b.Focused:
		return theme.ButtonActive.Render("▸ " + b.Label)
	default:
		return theme.Unselected.Render("  " + b.Label)
	}
}
