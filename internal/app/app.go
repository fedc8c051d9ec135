// Package app hosts the root Bubble Tea model and wires screens to their
// dependencies.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secmentor/internal/api"
	"github.com/abhisek/secmentor/internal/progression"
	"github.com/abhisek/secmentor/internal/router"
	"github.com/abhisek/secmentor/internal/screen"
	"github.com/abhisek/secmentor/internal/screens/chat"
	"github.com/abhisek/secmentor/internal/screens/login"
	"github.com/abhisek/secmentor/internal/store"
	"github.com/abhisek/secmentor/internal/ui/layout"
)

// Options carries the dependencies the screens need.
type Options struct {
	Client     *api.Client
	Prefs      store.PrefRepo
	Journal    store.JournalRepo
	Thresholds progression.ThresholdTable
	XPDuration time.Duration
	Logger     *slog.Logger
	// MarkdownStyle is the glamour style for chat replies.
	MarkdownStyle string
}

// closer is implemented by screens that hold per-conversation state.
type closer interface {
	Close()
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(initial screen.Screen) AppModel {
	return AppModel{router: router.New(initial)}
}

// newLoginScreen builds the login screen and what follows it.
func newLoginScreen(opts Options) *login.LoginScreen {
	next := func(state progression.UserState) screen.Screen {
		return chat.New(opts.Client, state, chat.Options{
			Thresholds: opts.Thresholds,
			XPDuration: opts.XPDuration,
			Journal:    opts.Journal,
			Logger:     opts.Logger,

			MarkdownStyle: opts.MarkdownStyle,
		})
	}
	return login.New(opts.Client, opts.Prefs, opts.Journal, opts.Logger, next)
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.sizeActive()

	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg:
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.sizeActive())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if c, ok := m.router.Active().(closer); ok {
				c.Close()
			}
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	return m, m.router.Update(msg)
}

// sizeActive tells the active screen how much room it has between the
// header and the footer.
func (m AppModel) sizeActive() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	return m.router.Update(tea.WindowSizeMsg{Width: m.width, Height: layout.ContentHeight(m.height)})
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.HeaderStatus(m.width)
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	content := m.router.View(m.width, layout.ContentHeight(m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the TUI on the login screen.
func Run(opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	p := tea.NewProgram(newAppModel(newLoginScreen(opts)))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
