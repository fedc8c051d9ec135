// Package activity shows what the local journal has recorded: totals and
// the most recent events.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secmentor/internal/screen"
	"github.com/abhisek/secmentor/internal/store"
	"github.com/abhisek/secmentor/internal/ui/layout"
	"github.com/abhisek/secmentor/internal/ui/theme"
)

// RecentLimit caps the events listed.
const RecentLimit = 15

type activityLoadedMsg struct {
	Summary store.Summary
	Events  []store.Event
	Err     error
}

// ActivityScreen is opened on top of the chat screen and closed with Esc.
type ActivityScreen struct {
	journal store.JournalRepo
	logger  *slog.Logger

	summary store.Summary
	events  []store.Event
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*ActivityScreen)(nil)
var _ screen.KeyHintProvider = (*ActivityScreen)(nil)

func New(journal store.JournalRepo, logger *slog.Logger) *ActivityScreen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ActivityScreen{journal: journal, logger: logger}
}

func (s *ActivityScreen) Init() tea.Cmd {
	journal := s.journal
	return func() tea.Msg {
		ctx := context.Background()
		sum, err := journal.Summary(ctx)
		if err != nil {
			return activityLoadedMsg{Err: err}
		}
		events, err := journal.Recent(ctx, RecentLimit)
		if err != nil {
			return activityLoadedMsg{Summary: sum, Err: err}
		}
		return activityLoadedMsg{Summary: sum, Events: events}
	}
}

func (s *ActivityScreen) Title() string {
	return "Activity"
}

func (s *ActivityScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ActivityScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(activityLoadedMsg); ok {
		if msg.Err != nil {
			s.logger.Error("load activity failed", "err", msg.Err)
			s.errMsg = msg.Err.Error()
		}
		s.summary = msg.Summary
		s.events = msg.Events
		s.loaded = true
	}
	return s, nil
}

func (s *ActivityScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return center.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\nLoading activity...")
	case s.summary.Logins == 0 && s.summary.Turns == 0:
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\nNo activity recorded yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Totals") + "\n")
	b.WriteString(s.summaryLine("Questions", fmt.Sprintf("%d (%d restricted)", s.summary.Turns, s.summary.Restricted)))
	b.WriteString(s.summaryLine("Quizzes", fmt.Sprintf("%d answered, %d correct, %d skipped",
		s.summary.QuizAnswered, s.summary.QuizCorrect, s.summary.QuizSkipped)))
	b.WriteString(s.summaryLine("XP earned", fmt.Sprintf("%d", s.summary.XPEarned)))
	b.WriteString(s.summaryLine("Logins", fmt.Sprintf("%d", s.summary.Logins)))

	b.WriteString("\n" + theme.Subtitle.Render("Recent") + "\n")
	room := max(height-9, 1)
	for i, e := range s.events {
		if i == room {
			break
		}
		b.WriteString(eventLine(e) + "\n")
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(strings.TrimRight(b.String(), "\n"))
}

func (s *ActivityScreen) summaryLine(label, value string) string {
	return theme.Hint.Render(fmt.Sprintf("%-11s", label)) + theme.Body.Render(value) + "\n"
}

func eventLine(e store.Event) string {
	ts := theme.Hint.Render(e.Timestamp.Local().Format("Jan 02 15:04"))
	kind := fmt.Sprintf("%-6s", e.Kind)

	var detail string
	switch {
	case e.Kind == store.EventChat && e.Restricted:
		detail = theme.Alert.Render("restricted")
	case e.Kind == store.EventQuiz && e.Correct:
		detail = theme.Correct.Render(fmt.Sprintf("✓ +%d XP", e.XPDelta))
	case e.Kind == store.EventQuiz:
		detail = theme.Incorrect.Render(fmt.Sprintf("✗ %+d XP", e.XPDelta))
	case e.XPDelta != 0:
		detail = theme.Body.Render(fmt.Sprintf("+%d XP", e.XPDelta))
	}
	return ts + "  " + theme.Body.Render(kind) + "  " + detail
}
