// internal/game/types.go
//
// Core type definitions for the Mastermind game engine.
// Defines:
//   - Color: one peg color from the fixed six-color palette (or None).
//   - Code: an ordered 4-slot sequence, used for both secret and guess.
//   - SlotFeedback: per-slot result of a guess (exact/present/none).
//   - Result: the evaluation of a single guess.
//   - Sentinel errors shared by every host (TUI, HTTP).

package game

import (
	"errors"
	"fmt"
	"strings"
)

// Slots is the number of pegs in every code.
const Slots = 4

var (
	ErrIncompleteGuess = errors.New("some values are not selected")
	ErrSlotOutOfRange  = errors.New("slot out of range")
	ErrUnknownColor    = errors.New("unknown color")
	ErrDebugDisabled   = errors.New("debug disabled")
)

// Color is a palette entry. The zero value None means "not selected".
type Color int

const (
	None Color = iota
	Red
	Orange
	Yellow
	White
	Green
	Blue
)

// Palette lists every selectable color in display order.
var Palette = [...]Color{Red, Orange, Yellow, White, Green, Blue}

var colorNames = [...]string{"", "red", "orange", "yellow", "white", "green", "blue"}

// Valid reports whether c is a selected palette color.
func (c Color) Valid() bool { return c >= Red && c <= Blue }

func (c Color) String() string {
	if c < None || c > Blue {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	if c == None {
		return "none"
	}
	return colorNames[c]
}

// Next returns the palette color after c, wrapping around. None yields Red.
func (c Color) Next() Color {
	if !c.Valid() {
		return Red
	}
	return c%Color(len(Palette)) + 1
}

// Prev returns the palette color before c, wrapping around. None yields Blue.
func (c Color) Prev() Color {
	if !c.Valid() || c == Red {
		return Blue
	}
	return c - 1
}

// ParseColor maps a case-insensitive name to a Color.
// The empty string parses to None.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return None, nil
	}
	for i, n := range colorNames {
		if i > 0 && n == s {
			return Color(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// MarshalText encodes the lowercase color name; None encodes as "".
func (c Color) MarshalText() ([]byte, error) {
	if c == None {
		return []byte{}, nil
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Code is an ordered sequence of exactly four colors.
type Code [Slots]Color

// ParseCode parses names such as "red,blue,green,white".
func ParseCode(s string) (Code, error) {
	var c Code
	parts := strings.Split(s, ",")
	if len(parts) != Slots {
		return c, fmt.Errorf("code needs %d colors, got %d", Slots, len(parts))
	}
	for i, p := range parts {
		v, err := ParseColor(p)
		if err != nil {
			return c, err
		}
		c[i] = v
	}
	return c, nil
}

// Complete reports whether every slot holds a palette color.
func (c Code) Complete() bool { return c.firstUnselected() < 0 }

func (c Code) firstUnselected() int {
	for i, v := range c {
		if !v.Valid() {
			return i
		}
	}
	return -1
}

// Contains reports whether color appears in any slot.
func (c Code) Contains(color Color) bool {
	for _, v := range c {
		if v == color {
			return true
		}
	}
	return false
}

func (c Code) String() string {
	names := make([]string, Slots)
	for i, v := range c {
		names[i] = v.String()
	}
	return strings.Join(names, ",")
}

// SlotFeedback is the evaluation result for one position of a guess.
//   - "exact":   color is in the secret at this position.
//   - "present": color is in the secret, at some position.
//   - "none":    color does not appear in the secret (or nothing evaluated yet).
type SlotFeedback string

const (
	FeedbackNone    SlotFeedback = "none"
	FeedbackPresent SlotFeedback = "present"
	FeedbackExact   SlotFeedback = "exact"
)

// Result is the outcome of evaluating one guess against a secret.
type Result struct {
	Slots        [Slots]SlotFeedback `json:"slots"`
	ExactMatches int                 `json:"exactMatches"`
}

// Solved reports whether every slot was an exact match.
func (r Result) Solved() bool { return r.ExactMatches == Slots }

// Scoring selects the evaluation rule.
type Scoring string

const (
	// ScoringSimple marks a slot present whenever its color is anywhere in
	// the secret, even if that secret slot is already matched elsewhere.
	ScoringSimple Scoring = "simple"
	// ScoringClassic counts each secret peg at most once.
	ScoringClassic Scoring = "classic"
)

// ParseScoring accepts "simple", "classic" or "" (simple).
func ParseScoring(s string) (Scoring, error) {
	switch Scoring(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScoringSimple:
		return ScoringSimple, nil
	case ScoringClassic:
		return ScoringClassic, nil
	}
	return "", fmt.Errorf("unknown scoring %q", s)
}

// Evaluator returns the evaluation function for the rule.
func (s Scoring) Evaluator() func(secret, guess Code) (Result, error) {
	if s == ScoringClassic {
		return EvaluateClassic
	}
	return Evaluate
}
