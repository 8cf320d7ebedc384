// internal/tui/styles.go
//
// lipgloss styles for the board. Each game.Border maps onto one frame:
// none is hidden, thin is a normal gray line, present and exact are thick
// lines in two distinct colors.

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/mastermind/internal/game"
)

var swatch = map[game.Color]lipgloss.Color{
	game.Red:    lipgloss.Color("#d7263d"),
	game.Orange: lipgloss.Color("#f49d37"),
	game.Yellow: lipgloss.Color("#f5d547"),
	game.White:  lipgloss.Color("#f2f2f2"),
	game.Green:  lipgloss.Color("#3bb273"),
	game.Blue:   lipgloss.Color("#2e86de"),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	solvedStyle = titleStyle.Foreground(lipgloss.Color("#3bb273"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7263d")).Italic(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Width(slotWidth + 2).Align(lipgloss.Center)

	slotBase = lipgloss.NewStyle().Width(slotWidth).Height(1)
)

const slotWidth = 6

func frameFor(b game.Border) lipgloss.Style {
	switch b {
	case game.BorderThin:
		return slotBase.Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("245"))
	case game.BorderPresent:
		return slotBase.Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#f5deb3"))
	case game.BorderExact:
		return slotBase.Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#8b0000"))
	}
	return slotBase.Border(lipgloss.HiddenBorder())
}

// renderSlot draws one position: its color as background inside its frame.
func renderSlot(v game.SlotView) string {
	st := frameFor(v.Border)
	if bg, ok := swatch[v.Color]; ok {
		st = st.Background(bg)
	}
	return st.Render("")
}
