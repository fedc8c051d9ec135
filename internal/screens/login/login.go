// Package login is the first screen: it signs the user in and hands over to
// the chat screen.
package login

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/router"
	"github.com/abhisek/secmentor/internal/screen"
	"github.com/abhisek/secmentor/internal/store"
	"github.com/abhisek/secmentor/internal/ui/components"
	"github.com/abhisek/secmentor/internal/ui/layout"
	"github.com/abhisek/secmentor/internal/ui/theme"
)

const (
	EmptyIDAlert = "Please enter a User ID"
	FailedAlert  = "Failed to log in. Please try again."
)

// Authenticator signs a user in. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, userID string) (progression.UserState, error)
}

// NextScreen builds the screen shown after a successful login.
type NextScreen func(state progression.UserState) screen.Screen

// storedIDMsg carries the saved user ID read at startup.
type storedIDMsg struct {
	ID  string
	Err error
}

// loginResultMsg is the outcome of one login attempt.
type loginResultMsg struct {
	UserID string
	State  progression.UserState
	Err    error
}

// LoginScreen asks for a user ID. Alerts block all input until a key is
// pressed.
type LoginScreen struct {
	auth    Authenticator
	prefs   store.PrefRepo
	journal store.JournalRepo
	logger  *slog.Logger
	next    NextScreen

	input components.TextInput
	alert string
	busy  bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New returns the login screen. prefs, journal and logger may be nil.
func New(auth Authenticator, prefs store.PrefRepo, journal store.JournalRepo, logger *slog.Logger, next NextScreen) *LoginScreen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoginScreen{
		auth:    auth,
		prefs:   prefs,
		journal: journal,
		logger:  logger,
		next:    next,
		input:   components.NewTextInput("User ID", 64),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.loadStoredID())
}

func (s *LoginScreen) Title() string {
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	if s.alert != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Dismiss"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Log in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Alert returns the alert currently blocking the screen, or "".
func (s *LoginScreen) Alert() string { return s.alert }

// Busy reports whether a login request is outstanding.
func (s *LoginScreen) Busy() bool { return s.busy }

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case storedIDMsg:
		if msg.Err != nil {
			s.logger.Warn("read stored user id", "err", msg.Err)
			return s, nil
		}
		if msg.ID == "" {
			return s, nil
		}
		s.input.SetValue(msg.ID)
		return s.submit()

	case loginResultMsg:
		s.busy = false
		if msg.Err != nil {
			s.logger.Error("login failed", "user_id", msg.UserID, "err", msg.Err)
			s.alert = FailedAlert
			return s, nil
		}
		next := s.next(msg.State)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.alert != "" {
			s.alert = ""
			return s, nil
		}
		if s.busy {
			return s, nil
		}
		if msg.String() == "enter" {
			return s.submit()
		}
	}

	if s.busy || s.alert != "" {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	id := s.input.Value()
	if id == "" {
		s.alert = EmptyIDAlert
		return s, nil
	}
	s.busy = true
	return s, s.login(id)
}

func (s *LoginScreen) loadStoredID() tea.Cmd {
	if s.prefs == nil {
		return nil
	}
	prefs := s.prefs
	return func() tea.Msg {
		id, _, err := prefs.Get(context.Background(), store.SessionUserKey)
		return storedIDMsg{ID: id, Err: err}
	}
}

// login calls the backend and, on success, remembers the ID and journals
// the login before the result reaches the event loop.
func (s *LoginScreen) login(userID string) tea.Cmd {
	auth, prefs, journal, logger := s.auth, s.prefs, s.journal, s.logger
	return func() tea.Msg {
		ctx := context.Background()
		state, err := auth.Login(ctx, userID)
		if err != nil {
			return loginResultMsg{UserID: userID, Err: err}
		}

		if prefs != nil {
			if err := prefs.Set(ctx, store.SessionUserKey, userID); err != nil {
				logger.Warn("save user id", "err", err)
			}
		}
		if journal != nil {
			err := journal.Append(ctx, store.Event{
				Kind:     store.EventLogin,
				UserID:   state.ID,
				XP:       state.XP,
				Rank:     state.Rank,
				RankName: state.RankName,
			})
			if err != nil {
				logger.Warn("journal login", "err", err)
			}
		}
		return loginResultMsg{UserID: userID, State: state}
	}
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(width-4, 48)

	body := theme.Title.Width(cw).Render("Security Mentor") + "\n" +
		theme.Subtitle.Width(cw).Render("Learn security by chatting. Earn XP. Rank up.") + "\n\n"

	switch {
	case s.alert != "":
		body += lipgloss.NewStyle().
			Width(cw).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1).
			Render(theme.Alert.Render(s.alert) + "\n\n" + theme.Hint.Render("Press any key"))
	case s.busy:
		body += s.input.View() + "\n\n" + theme.Pending.Render("Logging in...")
	default:
		body += s.input.View()
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.Card.Width(cw + 4).Render(body))
}
