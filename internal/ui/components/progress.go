package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/ui/theme"
)

// ProgressBar is a horizontal bar with an optional label and suffix.
type ProgressBar struct {
	Label    string
	Fraction float64
	Suffix   string
	Width    int
}

// RankBar builds the header bar for p. The suffix reads "xp/next" or
// "xp/MAX" at the top rank.
func RankBar(p progression.Progress, xp, width int) ProgressBar {
	return ProgressBar{
		Fraction: p.Fraction,
		Suffix:   fmt.Sprintf("%d/%s", xp, p.NextLabel),
		Width:    width,
	}
}

// View renders the bar. Fractions outside [0, 1] are drawn clamped.
func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + " "
	}
	suffix := ""
	if p.Suffix != "" {
		suffix = " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Suffix)
	}

	barWidth := max(p.Width-lipgloss.Width(out)-lipgloss.Width(suffix), 4)
	filled := min(max(int(float64(barWidth)*p.Fraction), 0), barWidth)

	out += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	return out + suffix
}
