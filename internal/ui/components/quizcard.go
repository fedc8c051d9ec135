package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secmentor/internal/quiz"
	"github.com/abhisek/secmentor/internal/ui/theme"
)

// QuizPickMsg asks for option Index of quiz QuizID to be graded.
type QuizPickMsg struct {
	QuizID string
	Index  int
}

// QuizSkipMsg asks for quiz QuizID to be declined.
type QuizSkipMsg struct {
	QuizID string
}

// QuizCard drives keyboard focus over the controls of one quiz. The
// interaction itself decides which picks are accepted.
type QuizCard struct {
	QuizID string
	Cursor int
}

func NewQuizCard(id string) QuizCard {
	return QuizCard{QuizID: id}
}

// Update moves the cursor and turns enter, number keys and "s" into pick
// or skip requests.
func (c QuizCard) Update(msg tea.Msg, in *quiz.Interaction) (QuizCard, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || in == nil {
		return c, nil
	}

	last := len(in.Controls) - 1
	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < last {
			c.Cursor++
		}
	case "1", "2", "3", "4":
		i := int(key[0] - '1')
		if i < in.SkipIndex() {
			c.Cursor = i
			return c, c.pick(i)
		}
	case "s":
		c.Cursor = in.SkipIndex()
		return c, c.skip()
	case "enter":
		if c.Cursor == in.SkipIndex() {
			return c, c.skip()
		}
		return c, c.pick(c.Cursor)
	}
	return c, nil
}

func (c QuizCard) pick(i int) tea.Cmd {
	id := c.QuizID
	return func() tea.Msg { return QuizPickMsg{QuizID: id, Index: i} }
}

func (c QuizCard) skip() tea.Cmd {
	id := c.QuizID
	return func() tea.Msg { return QuizSkipMsg{QuizID: id} }
}

// View renders the prompt through md and the controls of in. The cursor is
// only drawn when the card has focus and the quiz is still pending.
func (c QuizCard) View(in *quiz.Interaction, focused bool, width int, md *Markdown) string {
	var b strings.Builder
	b.WriteString(md.Render(in.Quiz.Prompt))
	b.WriteString("\n")

	showCursor := focused && in.State() == quiz.Pending
	for i, ctl := range in.Controls {
		b.WriteString("\n")
		if ctl.Skip {
			b.WriteString(Button{
				Label:    ctl.Label,
				Focused:  showCursor && i == c.Cursor,
				Disabled: ctl.Disabled,
			}.View())
			continue
		}
		b.WriteString(controlLine(i, ctl, showCursor && i == c.Cursor))
	}

	switch {
	case in.InFlight():
		b.WriteString("\n" + theme.Pending.Render("Checking..."))
	case in.State() == quiz.Skipped:
		b.WriteString("\n" + theme.Hint.Render("Skipped"))
	}
	return theme.Card.Width(width).Render(b.String())
}

func controlLine(i int, ctl quiz.Control, cursor bool) string {
	prefix := "  "
	if cursor {
		prefix = "▸ "
	}
	line := fmt.Sprintf("%s%d. %s", prefix, i+1, ctl.Label)

	switch {
	case ctl.Mark == quiz.MarkCorrect:
		return theme.Correct.Render(line + "  ✓")
	case ctl.Mark == quiz.MarkIncorrect:
		return theme.Incorrect.Render(line + "  ✗")
	case ctl.Disabled:
		return theme.Disabled.Render(line)
	case cursor:
		return theme.Selected.Render(line)
	default:
		return theme.Unselected.Render(line)
	}
}
