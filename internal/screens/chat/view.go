package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	convo "github.com/abhisek/secmentor/internal/chat"
	"github.com/abhisek/secmentor/internal/notify"
	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/ui/components"
	"github.com/abhisek/secmentor/internal/ui/layout"
	"github.com/abhisek/secmentor/internal/ui/theme"
)

// HeaderStatus renders the rank panel: rank, name, XP and the progress bar
// toward the next rank.
func (s *ChatScreen) HeaderStatus(width int) string {
	user, ok := s.session.User()
	if !ok {
		return ""
	}
	p := progression.Compute(user, s.table)

	rank := theme.RankUp.Render(fmt.Sprintf("Rank %d", user.Rank)) + " " +
		theme.Body.Render(user.RankName)
	if layout.IsCompactWidth(width) {
		return rank + " " + theme.Hint.Render(fmt.Sprintf("%d/%s XP", user.XP, p.NextLabel))
	}
	return rank + "  " + components.RankBar(p, user.XP, 28).View()
}

// View lays out the XP overlay row, the transcript viewport and the input.
// Sizes come from the last tea.WindowSizeMsg.
func (s *ChatScreen) View(_, _ int) string {
	overlay := ""
	if s.notifier.Visible() {
		overlay = lipgloss.PlaceHorizontal(s.width-2, lipgloss.Right, s.notifier.View())
	}
	body := lipgloss.NewStyle().PaddingLeft(1).Render(s.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, " "+overlay, body, s.renderInput(s.width))
}

// resize fits the viewport and both renderers to a content area of
// width x height. A transcript pinned to the bottom stays there.
func (s *ChatScreen) resize(width, height int) {
	follow := s.viewport.AtBottom()
	s.width = max(width, layout.MinWidth)
	s.height = max(height, 4)

	inputHeight := lipgloss.Height(s.renderInput(s.width))
	s.viewport.SetWidth(s.width - 1)
	s.viewport.SetHeight(max(s.height-inputHeight-1, 1))

	s.md.SetWidth(s.width - 2)
	s.promptMD.SetWidth(s.width - 6)
	s.refresh(follow)
}

// refresh re-renders the transcript into the viewport. It scrolls to the
// newest entry when bottom is set or the view was already there.
func (s *ChatScreen) refresh(bottom bool) {
	follow := bottom || s.viewport.AtBottom()
	s.viewport.SetContent(s.renderTranscript(s.width - 2))
	if follow {
		s.viewport.GotoBottom()
	}
}

func (s *ChatScreen) renderInput(width int) string {
	border := theme.Border
	if s.quizFocus == "" {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(s.input.View())
}

func (s *ChatScreen) renderTranscript(width int) string {
	entries := s.session.Transcript().Entries()
	if len(entries) == 0 {
		return theme.Hint.Render("Ask anything about application security to get started.")
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, s.renderEntry(e, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *ChatScreen) renderEntry(e convo.Entry, width int) string {
	switch e.Kind {
	case convo.EntryUser:
		return theme.UserLabel.Render("You") + "\n" + s.md.Render(e.Text)
	case convo.EntryBot:
		if e.Pending {
			return theme.BotLabel.Render("Mentor") + "\n" + theme.Pending.Render(e.Text)
		}
		return theme.BotLabel.Render("Mentor") + "\n" + s.md.Render(e.Text)
	case convo.EntryQuiz:
		in, ok := s.session.Quiz(e.QuizID)
		if !ok {
			return theme.BotLabel.Render("Quiz") + "\n" + s.md.Render(e.Text)
		}
		card := s.card
		if card.QuizID != e.QuizID {
			card = components.NewQuizCard(e.QuizID)
		}
		return theme.BotLabel.Render("Quiz") + "\n" + card.View(in, s.quizFocus == e.QuizID, width-2, s.promptMD)
	case convo.EntryRankUp:
		return theme.RankUp.Render("★ " + notify.RankUpText(e.Rank, e.RankName))
	default:
		return e.Text
	}
}
