// internal/game/view.go
//
// Presentation contract shared by every host.
// A feedback slot is drawn as its chosen color plus a border:
//   - unselected:  no background, no border
//   - selected:    thin gray border
//   - present:     thick neutral border
//   - exact:       thick distinct border

package game

import "fmt"

// Border is the border style of one feedback slot.
type Border string

const (
	BorderNone    Border = "none"
	BorderThin    Border = "thin"
	BorderPresent Border = "present"
	BorderExact   Border = "exact"
)

// SlotView is what a host renders for one position.
type SlotView struct {
	Color  Color  `json:"color"`
	Border Border `json:"border"`
}

// BorderFor maps a selection and its feedback to a border style.
func BorderFor(c Color, f SlotFeedback) Border {
	if !c.Valid() {
		return BorderNone
	}
	switch f {
	case FeedbackExact:
		return BorderExact
	case FeedbackPresent:
		return BorderPresent
	}
	return BorderThin
}

// SlotViews returns the four slot views for a snapshot.
func (st State) SlotViews() [Slots]SlotView {
	var out [Slots]SlotView
	for i := range out {
		out[i] = SlotView{Color: st.Board[i], Border: BorderFor(st.Board[i], st.Feedback[i])}
	}
	return out
}

// Title is the status line for a snapshot.
func (st State) Title() string { return TitleFor(st.Attempts, st.Solved) }

// TitleFor formats the status line.
func TitleFor(attempts int, solved bool) string {
	switch {
	case solved:
		return "Correct"
	case attempts == 0:
		return "Mastermind"
	}
	return fmt.Sprintf("Attempt %d", attempts)
}
