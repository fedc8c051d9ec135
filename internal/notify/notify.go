// Package notify presents transient XP feedback and rank-up announcements.
package notify

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secmentor/internal/ui/theme"
)

// DefaultDelay is how long an XP notification stays visible.
const DefaultDelay = 3 * time.Second

// HideMsg asks the presenter to hide the XP overlay shown at generation Gen.
type HideMsg struct {
	Gen int
}

// Presenter owns the floating XP overlay. A new ShowXP replaces the visible
// value and restarts the timer; stale hide messages are ignored.
type Presenter struct {
	Delay time.Duration

	text    string
	visible bool
	gen     int
}

// NewPresenter returns a presenter that hides after delay.
func NewPresenter(delay time.Duration) *Presenter {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Presenter{Delay: delay}
}

// ShowXP makes the overlay visible with delta and returns the command that
// will hide it.
func (p *Presenter) ShowXP(delta int) tea.Cmd {
	p.gen++
	p.text = FormatXP(delta)
	p.visible = true

	gen := p.gen
	return tea.Tick(p.Delay, func(time.Time) tea.Msg {
		return HideMsg{Gen: gen}
	})
}

// Update handles HideMsg. It reports whether the message was consumed.
func (p *Presenter) Update(msg tea.Msg) bool {
	hide, ok := msg.(HideMsg)
	if !ok {
		return false
	}
	if hide.Gen == p.gen {
		p.visible = false
	}
	return true
}

// Visible reports whether the overlay is showing.
func (p *Presenter) Visible() bool { return p.visible }

// Text returns the formatted delta of the last ShowXP.
func (p *Presenter) Text() string { return p.text }

// View renders the overlay, or "" when hidden.
func (p *Presenter) View() string {
	if !p.visible {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(theme.BgDark).
		Background(theme.Accent).
		Bold(true).
		Padding(0, 1).
		Render(p.text + " XP")
}

// FormatXP renders delta with a leading "+" when positive.
func FormatXP(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}

// RankUpText is the transcript text of a rank-up announcement.
func RankUpText(rank int, name string) string {
	return fmt.Sprintf("Rank up! You are now rank %d: %s", rank, name)
}
