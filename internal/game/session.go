// internal/game/session.go
//
// Session owns the state of one player's game and exposes the host-facing
// operations: slot selection, submission, board reset and new round.
//
// State transitions:
//   - OnGuessSlotChanged: stores a selection, clears that slot's feedback.
//   - SubmitCode: SetGuess + SubmitGuess under one lock (HTTP bodies).
//   - SubmitGuess: if the previous round was solved, starts a new round first
//     (fresh secret, attempts back to 0), then evaluates the board.
//     Non-winning → Attempts++; winning → Solved.
//   - ResetBoard: clears selections and feedback only.
//   - NewRound: fresh secret, attempts 0, board cleared.
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a read-only snapshot handed to views.
type State struct {
	ID       string              `json:"id"`
	RoundID  string              `json:"roundId"`
	Attempts int                 `json:"attempts"`
	Solved   bool                `json:"solved"`
	Board    Code                `json:"board"`
	Feedback [Slots]SlotFeedback `json:"feedback"`
	Scoring  Scoring             `json:"scoring"`
}

// Submission is returned by SubmitGuess.
type Submission struct {
	Result
	Attempts int    `json:"attempts"`
	Solved   bool   `json:"solved"`
	RoundID  string `json:"roundId"`
	// RoundStarted is set when this submission opened a new round.
	RoundStarted bool `json:"roundStarted"`
}

var blankFeedback = [Slots]SlotFeedback{FeedbackNone, FeedbackNone, FeedbackNone, FeedbackNone}

// Option configures a Session.
type Option func(*Session)

// WithSource injects the random source used for secrets.
func WithSource(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

// WithScoring selects the evaluation rule.
func WithScoring(sc Scoring) Option { return func(s *Session) { s.scoring = sc } }

// WithSecret fixes the first round's secret (testing, daily puzzles).
func WithSecret(c Code) Option { return func(s *Session) { s.fixed = &c } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// Session is safe for concurrent use; operations are serialized.
type Session struct {
	mu sync.Mutex

	id      string
	rng     *rand.Rand
	scoring Scoring
	now     func() time.Time
	fixed   *Code

	roundID    string
	secret     Code
	attempts   int
	solved     bool
	board      Code
	feedback   [Slots]SlotFeedback
	roundStart time.Time

	// cosmetic attempt timer; no effect on play
	timerStart time.Time
	timerStop  time.Duration
	timerDone  bool
}

// NewSession creates a session with a freshly generated secret.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		scoring:  ScoringSimple,
		now:      time.Now,
		feedback: blankFeedback,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = NewSource()
	}
	s.startRound()
	if s.fixed != nil {
		s.secret = *s.fixed
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) startRound() {
	s.roundID = uuid.NewString()
	s.secret = GenerateSecret(s.rng)
	s.attempts = 0
	s.solved = false
	s.roundStart = s.now()
	s.restartTimer()
}

func (s *Session) restartTimer() {
	s.timerStart = s.now()
	s.timerDone = false
	s.timerStop = 0
}

// OnGuessSlotChanged records the color chosen for slot (0-based).
func (s *Session) OnGuessSlotChanged(slot int, c Color) error {
	if slot < 0 || slot >= Slots {
		return ErrSlotOutOfRange
	}
	if err := checkSelection(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board[slot] = c
	s.feedback[slot] = FeedbackNone
	return nil
}

// SetGuess replaces every slot at once. Nothing is written unless all four
// selections are valid.
func (s *Session) SetGuess(c Code) error {
	if err := checkSelections(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBoard(c)
	return nil
}

// SubmitCode replaces the board with c and evaluates it in one step, so
// concurrent callers never score a board mixing two guesses.
func (s *Session) SubmitCode(c Code) (Submission, error) {
	if err := checkSelections(c); err != nil {
		return Submission{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBoard(c)
	return s.submit()
}

// SubmitGuess evaluates the current board.
// An incomplete board returns ErrIncompleteGuess and leaves the secret,
// attempt count and solved flag untouched.
func (s *Session) SubmitGuess() (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit()
}

func checkSelection(c Color) error {
	if c != None && !c.Valid() {
		return ErrUnknownColor
	}
	return nil
}

func checkSelections(c Code) error {
	for i, v := range c {
		if err := checkSelection(v); err != nil {
			return fmt.Errorf("%w: slot %d", err, i+1)
		}
	}
	return nil
}

// setBoard requires s.mu.
func (s *Session) setBoard(c Code) {
	s.board = c
	s.feedback = blankFeedback
}

// submit requires s.mu.
func (s *Session) submit() (Submission, error) {
	s.feedback = blankFeedback
	if !s.board.Complete() {
		_, err := Evaluate(s.secret, s.board)
		return Submission{}, err
	}

	started := false
	if s.solved {
		s.startRound()
		started = true
	}

	res, err := s.scoring.Evaluator()(s.secret, s.board)
	if err != nil {
		return Submission{}, err
	}
	s.feedback = res.Slots

	if res.Solved() {
		s.solved = true
		s.timerStop = s.now().Sub(s.timerStart)
		s.timerDone = true
	} else {
		s.attempts++
		s.restartTimer()
	}
	return Submission{
		Result:       res,
		Attempts:     s.attempts,
		Solved:       s.solved,
		RoundID:      s.roundID,
		RoundStarted: started,
	}, nil
}

// ResetBoard clears every selection and all feedback. The secret, attempt
// count and solved flag are kept.
func (s *Session) ResetBoard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = Code{}
	s.feedback = blankFeedback
}

// NewRound abandons the current round and starts another.
func (s *Session) NewRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startRound()
	s.board = Code{}
	s.feedback = blankFeedback
}

// State returns a snapshot for rendering.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:       s.id,
		RoundID:  s.roundID,
		Attempts: s.attempts,
		Solved:   s.solved,
		Board:    s.board,
		Feedback: s.feedback,
		Scoring:  s.scoring,
	}
}

// Title is the status line: "Mastermind", "Attempt N" or "Correct".
func (s *Session) Title() string {
	return s.State().Title()
}

// Elapsed is the cosmetic time since the last non-winning submission,
// frozen once the round is solved.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerDone {
		return s.timerStop
	}
	return s.now().Sub(s.timerStart)
}

// RoundElapsed is the time since the current round started.
func (s *Session) RoundElapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.roundStart)
}

// RevealSecret exposes the secret for diagnostics when debug is enabled.
func (s *Session) RevealSecret(debug bool) (Code, error) {
	if !debug {
		return Code{}, ErrDebugDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret, nil
}
