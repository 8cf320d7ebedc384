// internal/tui/model.go
//
// Terminal host for one game.Session.
// Responsibilities:
//   - Map keys onto session operations (select, submit, reset, new round).
//   - Render the title, the four slots with their feedback borders, the
//     cosmetic attempt timer and a one-line notice.
//   - Reveal the secret on ctrl+d when debug is enabled.
//
// The model is driven by the bubbletea event loop and is not shared across
// goroutines; the session it wraps does its own locking.

package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
)

// IncompleteNotice is shown when enter is pressed with an empty slot.
const IncompleteNotice = "Some values are not selected"

type tickMsg time.Time

// Options configure the terminal board.
type Options struct {
	// Debug enables the ctrl+d secret reveal.
	Debug bool
	// Subtitle is printed under the title (e.g. "daily 2026-05-04").
	Subtitle string
}

// Model is the bubbletea model for the board.
type Model struct {
	sess *game.Session
	opts Options
	keys keyMap
	help help.Model

	focus  int
	notice string
	secret string
}

// New creates a board for sess.
func New(sess *game.Session, opts Options) Model {
	return Model{
		sess: sess,
		opts: opts,
		keys: defaultKeys(opts.Debug),
		help: help.New(),
	}
}

// Session returns the wrapped session.
func (m Model) Session() *game.Session { return m.sess }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return tick() }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The notice lasts until the next key press.
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.focus = (m.focus + game.Slots - 1) % game.Slots
	case key.Matches(msg, m.keys.Right):
		m.focus = (m.focus + 1) % game.Slots
	case key.Matches(msg, m.keys.Up):
		m.setFocused(m.focused().Next())
	case key.Matches(msg, m.keys.Down):
		m.setFocused(m.focused().Prev())
	case key.Matches(msg, m.keys.Pick):
		m.setFocused(game.Palette[msg.String()[0]-'1'])
		m.focus = (m.focus + 1) % game.Slots
	case key.Matches(msg, m.keys.Submit):
		m.submit()
	case key.Matches(msg, m.keys.Reset):
		m.sess.ResetBoard()
		m.focus = 0
	case key.Matches(msg, m.keys.Round):
		m.sess.NewRound()
		m.focus = 0
		m.secret = ""
	case key.Matches(msg, m.keys.Reveal):
		if code, err := m.sess.RevealSecret(m.opts.Debug); err == nil {
			m.secret = code.String()
		}
	}
	return m, nil
}

func (m Model) focused() game.Color {
	return m.sess.State().Board[m.focus]
}

func (m *Model) setFocused(c game.Color) {
	if err := m.sess.OnGuessSlotChanged(m.focus, c); err != nil {
		log.Warn().Err(err).Int("slot", m.focus).Msg("select color")
	}
}

func (m *Model) submit() {
	sub, err := m.sess.SubmitGuess()
	switch {
	case errors.Is(err, game.ErrIncompleteGuess):
		m.notice = IncompleteNotice
		return
	case err != nil:
		m.notice = err.Error()
		return
	}
	if sub.RoundStarted {
		m.secret = ""
	}
	if sub.Solved {
		log.Info().Str("round", sub.RoundID).Int("attempts", sub.Attempts).Msg("round solved")
	} else {
		log.Debug().Int("exact", sub.ExactMatches).Int("attempts", sub.Attempts).Msg("guess")
	}
}

// View implements tea.Model.
func (m Model) View() string {
	st := m.sess.State()
	var b strings.Builder

	title := titleStyle.Render(st.Title())
	if st.Solved {
		title = solvedStyle.Render(st.Title())
	}
	b.WriteString(title)
	if m.opts.Subtitle != "" {
		b.WriteString(dimStyle.Render("  " + m.opts.Subtitle))
	}
	b.WriteString("\n\n")

	views := st.SlotViews()
	slots := make([]string, game.Slots)
	cursor := make([]string, game.Slots)
	for i, v := range views {
		slots[i] = renderSlot(v)
		label := v.Color.String()
		if v.Color == game.None {
			label = "·"
		}
		if i == m.focus {
			label = "▲ " + label
		}
		cursor[i] = cursorStyle.Render(label)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, slots...))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cursor...))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(formatElapsed(m.sess.Elapsed())))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")
	if m.secret != "" {
		b.WriteString(dimStyle.Render("secret: " + m.secret))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
