package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/game"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	ctrlD = tea.KeyMsg{Type: tea.KeyCtrlD}
)

// press feeds keys through Update and returns the resulting model.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func newBoard(secret game.Code, debug bool) Model {
	return New(game.NewSession(game.WithSecret(secret)), Options{Debug: debug})
}

func TestDigitsFillSlotsLeftToRight(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	m = press(t, m, runes("1"), runes("6"), runes("3"))

	st := m.Session().State()
	assert.Equal(t, game.Code{game.Red, game.Blue, game.Yellow, game.None}, st.Board)
	assert.Equal(t, 3, m.focus)
}

func TestArrowsMoveFocusAndCycleColor(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	m = press(t, m, left)
	assert.Equal(t, 3, m.focus, "focus wraps")

	m = press(t, m, up, up)
	assert.Equal(t, game.Orange, m.Session().State().Board[3])
	m = press(t, m, down, down)
	assert.Equal(t, game.Blue, m.Session().State().Board[3], "red wraps back to blue")
}

func TestSubmitIncompleteShowsNoticeUntilNextKey(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	m = press(t, m, runes("1"), enter)

	assert.Equal(t, IncompleteNotice, m.notice)
	assert.Contains(t, m.View(), IncompleteNotice)
	assert.Zero(t, m.Session().State().Attempts)

	m = press(t, m, left)
	assert.Empty(t, m.notice)
}

func TestSubmitScoresAndTitles(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	assert.Contains(t, m.View(), "Mastermind")

	// red, white, orange, green
	m = press(t, m, runes("1"), runes("4"), runes("2"), runes("5"), enter)
	st := m.Session().State()
	assert.Equal(t, 1, st.Attempts)
	assert.Equal(t, [game.Slots]game.SlotFeedback{game.FeedbackExact, game.FeedbackPresent, game.FeedbackPresent, game.FeedbackNone}, st.Feedback)
	assert.Contains(t, m.View(), "Attempt 1")

	// red, orange, yellow, white
	m = press(t, m, runes("1"), runes("2"), runes("3"), runes("4"), enter)
	assert.True(t, m.Session().State().Solved)
	assert.Contains(t, m.View(), "Correct")
}

func TestResetKeepsAttempts(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	m = press(t, m, runes("5"), runes("5"), runes("5"), runes("5"), enter, runes("r"))

	st := m.Session().State()
	assert.Equal(t, 1, st.Attempts)
	assert.Equal(t, game.Code{}, st.Board)
	assert.Equal(t, 0, m.focus)
}

func TestNewRoundKey(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	m = press(t, m, runes("5"), runes("5"), runes("5"), runes("5"), enter, runes("n"))
	assert.Zero(t, m.Session().State().Attempts)
}

func TestRevealRequiresDebug(t *testing.T) {
	secret := game.Code{game.Red, game.Orange, game.Yellow, game.White}

	m := press(t, newBoard(secret, false), ctrlD)
	assert.Empty(t, m.secret)
	assert.NotContains(t, m.View(), "secret:")

	m = press(t, newBoard(secret, true), ctrlD)
	assert.Equal(t, "red,orange,yellow,white", m.secret)
	assert.Contains(t, m.View(), "secret: red,orange,yellow,white")
}

func TestQuit(t *testing.T) {
	m := newBoard(game.Code{game.Red, game.Orange, game.Yellow, game.White}, false)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", formatElapsed(0))
	assert.Equal(t, "01:05", formatElapsed(65*time.Second+400*time.Millisecond))
}

func TestFrameFor(t *testing.T) {
	assert.NotEqual(t, frameFor(game.BorderPresent).GetBorderTopForeground(), frameFor(game.BorderExact).GetBorderTopForeground())
}
