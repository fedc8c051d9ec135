// Package chat is the main screen: the transcript, the rank panel and the
// message input.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secmentor/internal/api"
	convo "github.com/abhisek/secmentor/internal/chat"
	"github.com/abhisek/secmentor/internal/notify"
	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/router"
	"github.com/abhisek/secmentor/internal/screen"
	"github.com/abhisek/secmentor/internal/screens/activity"
	"github.com/abhisek/secmentor/internal/store"
	"github.com/abhisek/secmentor/internal/ui/components"
	"github.com/abhisek/secmentor/internal/ui/layout"
)

// Backend answers chat turns and grades quizzes. *api.Client implements it.
type Backend interface {
	Chat(ctx context.Context, query string) (api.ChatReply, error)
	Grade(ctx context.Context, answer, correctAnswer string) (api.GradeReply, error)
}

// Options tune the chat screen. Zero values pick defaults.
type Options struct {
	Thresholds progression.ThresholdTable
	XPDuration time.Duration
	Journal    store.JournalRepo
	Logger     *slog.Logger
	// MarkdownStyle names the glamour style for replies; see
	// components.DefaultMarkdownStyle.
	MarkdownStyle string
}

// Size used until the first tea.WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 20
)

// ChatScreen implements screen.Screen for a logged-in conversation.
type ChatScreen struct {
	backend  Backend
	session  *convo.Session
	table    progression.ThresholdTable
	notifier *notify.Presenter
	journal  store.JournalRepo
	logger   *slog.Logger

	input     components.TextInput
	quizFocus string // "" while the input has focus
	card      components.QuizCard

	width    int
	height   int
	viewport viewport.Model
	md       *components.Markdown // transcript entries
	promptMD *components.Markdown // quiz prompts, inside the card frame
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.StatusProvider = (*ChatScreen)(nil)

// New opens a conversation for the user returned by login.
func New(backend Backend, user progression.UserState, opts Options) *ChatScreen {
	if opts.Thresholds == nil {
		opts.Thresholds = progression.DefaultThresholds()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &ChatScreen{
		backend:  backend,
		session:  convo.NewSession(progression.NewCell()),
		table:    opts.Thresholds,
		notifier: notify.NewPresenter(opts.XPDuration),
		journal:  opts.Journal,
		logger:   opts.Logger,
		input:    components.NewTextInput("Ask about security...", 0),
		viewport: viewport.New(),
		md:       components.NewMarkdown(opts.MarkdownStyle, defaultWidth),
		promptMD: components.NewMarkdown(opts.MarkdownStyle, defaultWidth),
	}
	s.session.Cell().Subscribe(func(ch progression.Change) {
		s.checkProgress(ch.Next)
	})
	s.session.Login(user)
	s.resize(defaultWidth, defaultHeight)
	return s
}

// Session exposes the conversation state.
func (s *ChatScreen) Session() *convo.Session { return s.session }

// Notifier exposes the XP overlay.
func (s *ChatScreen) Notifier() *notify.Presenter { return s.notifier }

// QuizFocus returns the focused quiz ID, or "" when the input has focus.
func (s *ChatScreen) QuizFocus() string { return s.quizFocus }

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Chat"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.quizFocus != "" {
		return []layout.KeyHint{
			{Key: "↑↓/1-4", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "s", Description: "Skip"},
			{Key: "Tab", Description: "Back to input"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
	if len(s.session.PendingQuizzes()) > 0 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Answer quiz"})
	}
	if s.journal != nil && !layout.IsCompactWidth(s.width) {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Activity"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Close ends the conversation and drops its quizzes.
func (s *ChatScreen) Close() {
	s.session.Close()
	s.quizFocus = ""
	s.refresh(false)
}

// Size returns the content area from the last resize.
func (s *ChatScreen) Size() (width, height int) { return s.width, s.height }

// Viewport exposes the transcript scroll state.
func (s *ChatScreen) Viewport() viewport.Model { return s.viewport }

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd

	case chatReplyMsg:
		return s.handleReply(msg)

	case gradeResultMsg:
		return s.handleGrade(msg)

	case components.QuizPickMsg:
		return s.handlePick(msg)

	case components.QuizSkipMsg:
		return s.handleSkip(msg)

	case notify.HideMsg:
		s.notifier.Update(msg)
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.quizFocus == "" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ChatScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		cmd := s.toggleFocus()
		s.refresh(false)
		return s, cmd
	case "pgup", "pgdown":
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	case "ctrl+r":
		if s.journal == nil {
			return s, nil
		}
		next := activity.New(s.journal, s.logger)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}

	if s.quizFocus != "" {
		if msg.String() == "esc" {
			cmd := s.focusInput()
			s.refresh(false)
			return s, cmd
		}
		in, ok := s.session.Quiz(s.quizFocus)
		if !ok {
			return s, s.focusInput()
		}
		var cmd tea.Cmd
		s.card, cmd = s.card.Update(msg, in)
		s.refresh(false)
		return s, cmd
	}

	if msg.String() == "enter" {
		return s.send()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// toggleFocus moves between the input and the newest pending quiz.
func (s *ChatScreen) toggleFocus() tea.Cmd {
	if s.quizFocus != "" {
		return s.focusInput()
	}
	pending := s.session.PendingQuizzes()
	if len(pending) == 0 {
		return nil
	}
	s.quizFocus = pending[len(pending)-1]
	s.card = components.NewQuizCard(s.quizFocus)
	s.input.Blur()
	return nil
}

func (s *ChatScreen) focusInput() tea.Cmd {
	s.quizFocus = ""
	return s.input.Focus()
}

func (s *ChatScreen) send() (screen.Screen, tea.Cmd) {
	turn, ok := s.session.Send(s.input.Value())
	if !ok {
		return s, nil
	}
	s.input.Reset()
	s.refresh(true)

	backend := s.backend
	return s, func() tea.Msg {
		reply, err := backend.Chat(context.Background(), turn.Query)
		return chatReplyMsg{Turn: turn, Reply: reply, Err: err}
	}
}

func (s *ChatScreen) handleReply(msg chatReplyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.logger.Error("chat request failed", "turn", msg.Turn.ID, "err", msg.Err)
		s.session.FailReply(msg.Turn)
		s.refresh(true)
		return s, nil
	}

	out := s.session.ApplyReply(msg.Turn, msg.Reply)
	s.refresh(true)
	s.record(store.Event{
		Kind:       store.EventChat,
		Restricted: out.Restricted,
		XPDelta:    out.XPDelta,
	})
	if out.RankUp != nil {
		s.logger.Info("rank up", "rank", out.RankUp.Rank, "name", out.RankUp.RankName)
	}
	if out.ShowXP {
		return s, s.notifier.ShowXP(out.XPDelta)
	}
	return s, nil
}

func (s *ChatScreen) handlePick(msg components.QuizPickMsg) (screen.Screen, tea.Cmd) {
	req, ok := s.session.SelectOption(msg.QuizID, msg.Index)
	if !ok {
		return s, nil
	}
	s.refresh(false)

	backend := s.backend
	return s, func() tea.Msg {
		reply, err := backend.Grade(context.Background(), req.Answer, req.CorrectAnswer)
		return gradeResultMsg{QuizID: msg.QuizID, Reply: reply, Err: err}
	}
}

func (s *ChatScreen) handleGrade(msg gradeResultMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.logger.Error("quiz grading failed", "quiz", msg.QuizID, "err", msg.Err)
		s.session.FailGrade(msg.QuizID)
		s.refresh(false)
		return s, nil
	}

	out := s.session.ApplyGrade(msg.QuizID, msg.Reply)
	defer s.refresh(out.RankUp != nil)
	if !out.ShowXP {
		return s, nil
	}
	s.record(store.Event{
		Kind:    store.EventQuiz,
		Correct: msg.Reply.Correct,
		XPDelta: msg.Reply.XPGained,
	})
	if out.RankUp != nil {
		s.logger.Info("rank up", "rank", out.RankUp.Rank, "name", out.RankUp.RankName)
	}

	var cmd tea.Cmd
	if s.quizFocus == msg.QuizID {
		cmd = s.focusInput()
	}
	return s, tea.Batch(cmd, s.notifier.ShowXP(out.XPDelta))
}

func (s *ChatScreen) handleSkip(msg components.QuizSkipMsg) (screen.Screen, tea.Cmd) {
	if !s.session.SkipQuiz(msg.QuizID) {
		return s, nil
	}
	defer s.refresh(false)
	s.record(store.Event{Kind: store.EventSkip})
	if s.quizFocus == msg.QuizID {
		return s, s.focusInput()
	}
	return s, nil
}

// record journals e with the current user snapshot. Failures are logged
// and otherwise ignored.
func (s *ChatScreen) record(e store.Event) {
	if s.journal == nil {
		return
	}
	if user, ok := s.session.User(); ok {
		e.UserID = user.ID
		e.XP = user.XP
		e.Rank = user.Rank
		e.RankName = user.RankName
	}
	if err := s.journal.Append(context.Background(), e); err != nil {
		s.logger.Warn("journal write failed", "kind", e.Kind, "err", err)
	}
}

// checkProgress warns when the threshold table cannot place state on the
// progress bar. The bar is still drawn, clamped.
func (s *ChatScreen) checkProgress(state progression.UserState) {
	p := progression.Compute(state, s.table)
	if !p.OutOfRange {
		return
	}
	s.logger.Warn("progress out of range",
		"xp", state.XP,
		"rank", state.Rank,
		"next", state.NextRank.Threshold.String(),
		"raw", fmt.Sprintf("%.2f", p.Raw),
	)
}
