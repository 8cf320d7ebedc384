// internal/game/engine.go
//
// Guess evaluation and secret generation.
// Responsibilities:
//   - Evaluate a guess against a secret (simple, non-deduplicating rule).
//   - Evaluate with classic Mastermind peg counting when configured.
//   - Draw secrets from an injected random source.
//
// Notes:
//   - Evaluation is pure: no shared state, no I/O.
//   - A guess with any unselected slot yields ErrIncompleteGuess and no feedback.
package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// Evaluate scores guess against secret slot by slot.
//
//   - guess[i] == secret[i]          → exact, ExactMatches++
//   - guess[i] anywhere in secret    → present
//   - otherwise                      → none
//
// The present check does not deduplicate: a color that occurs once in the
// secret marks every other guess slot holding it as present.
func Evaluate(secret, guess Code) (Result, error) {
	if err := checkCodes(secret, guess); err != nil {
		return Result{}, err
	}
	var res Result
	for i := range guess {
		switch {
		case guess[i] == secret[i]:
			res.Slots[i] = FeedbackExact
			res.ExactMatches++
		case secret.Contains(guess[i]):
			res.Slots[i] = FeedbackPresent
		default:
			res.Slots[i] = FeedbackNone
		}
	}
	return res, nil
}

// EvaluateClassic implements two-pass peg counting.
//
// Pass 1: mark exact matches and count the remaining secret colors.
// Pass 2: for each non-exact slot, mark present if an unused secret peg of
// that color remains and consume it; otherwise none.
func EvaluateClassic(secret, guess Code) (Result, error) {
	if err := checkCodes(secret, guess); err != nil {
		return Result{}, err
	}
	var res Result
	var counts [len(colorNames)]int

	for i := range guess {
		if guess[i] == secret[i] {
			res.Slots[i] = FeedbackExact
			res.ExactMatches++
		} else {
			counts[secret[i]]++
		}
	}

	for i := range guess {
		if res.Slots[i] == FeedbackExact {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res.Slots[i] = FeedbackPresent
			counts[c]--
		} else {
			res.Slots[i] = FeedbackNone
		}
	}
	return res, nil
}

func checkCodes(secret, guess Code) error {
	if i := guess.firstUnselected(); i >= 0 {
		return fmt.Errorf("%w: slot %d", ErrIncompleteGuess, i+1)
	}
	if i := secret.firstUnselected(); i >= 0 {
		return fmt.Errorf("%w: secret slot %d", ErrIncompleteGuess, i+1)
	}
	return nil
}

// GenerateSecret draws four colors independently and uniformly from the
// palette, with replacement.
func GenerateSecret(r *rand.Rand) Code {
	var c Code
	for i := range c {
		c[i] = Palette[r.Intn(len(Palette))]
	}
	return c
}

// NewSource returns a math/rand generator seeded from crypto/rand.
// Falls back to the wall clock if the system entropy source fails.
func NewSource() *rand.Rand {
	var b [8]byte
	seed := time.Now().UnixNano()
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:]))
	}
	return rand.New(rand.NewSource(seed))
}
