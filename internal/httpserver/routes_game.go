// internal/httpserver/routes_game.go
//
// HTTP routes for free play. Each endpoint maps onto one game.Session
// operation and answers with the board the client should render:
//   - POST /game/new                 → create a session (optional scoring)
//   - GET  /game/{id}                → current board
//   - PUT  /game/{id}/slot/{slot}    → select a color for slot 1..4
//   - POST /game/{id}/submit         → evaluate the board (optional full guess in body)
//   - POST /game/{id}/reset          → clear selections and feedback
//   - POST /game/{id}/round          → abandon the round and start a new one
//   - GET  /game/{id}/debug/secret   → secret, only when DEBUG is enabled

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/store"
)

// incompleteGuessBody is the user-facing notice for ErrIncompleteGuess.
const incompleteGuessBody = `{"error":"Some values are not selected"}`

type ctxSessionKey struct{}

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleBoard)
			r.Put("/slot/{slot}", s.handleSlot)
			r.Post("/submit", s.handleSubmit)
			r.Post("/reset", s.handleReset)
			r.Post("/round", s.handleNewRound)
			r.Get("/debug/secret", s.handleRevealSecret)
		})
	})
}

// withSession loads the session named by {id} into the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *game.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*game.Session)
	return sess
}

// boardRes is the presentation contract for one session.
type boardRes struct {
	GameID    string                        `json:"gameId"`
	Title     string                        `json:"title"`
	Attempts  int                           `json:"attempts"`
	Solved    bool                          `json:"solved"`
	Scoring   game.Scoring                  `json:"scoring"`
	Slots     [game.Slots]game.SlotView     `json:"slots"`
	Feedback  [game.Slots]game.SlotFeedback `json:"feedback"`
	ElapsedMs int64                         `json:"elapsedMs"`
}

func board(sess *game.Session) boardRes {
	st := sess.State()
	return boardRes{
		GameID:    st.ID,
		Title:     st.Title(),
		Attempts:  st.Attempts,
		Solved:    st.Solved,
		Scoring:   st.Scoring,
		Slots:     st.SlotViews(),
		Feedback:  st.Feedback,
		ElapsedMs: sess.Elapsed().Milliseconds(),
	}
}

// ------------------------------- /game/new ---------------------------------

type newGameReq struct {
	Scoring string `json:"scoring"` // "simple" | "classic" | "" (server default)
}
type newGameRes struct {
	GameID string `json:"gameId"`
}

// handleNewGame creates a session and records the owner's first round.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sc := s.cfg.Scoring
	if req.Scoring != "" {
		var err error
		if sc, err = game.ParseScoring(req.Scoring); err != nil {
			http.Error(w, `{"error":"bad_scoring"}`, http.StatusBadRequest)
			return
		}
	}

	sess := game.NewSession(game.WithScoring(sc))
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.db.StartRound(r.Context(), s.owner(w, r), sess.State().RoundID, sess.ID(), string(sc)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID()).Msg("insert round row")
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID()})
}

// ------------------------------ board routes --------------------------------

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(board(sessionFrom(r)))
}

type slotReq struct {
	Color game.Color `json:"color"`
}

// handleSlot selects a color for a 1-based slot. An empty color clears it.
func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		http.Error(w, `{"error":"bad_slot"}`, http.StatusBadRequest)
		return
	}
	var req slotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_color"}`, http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	if err := sess.OnGuessSlotChanged(slot-1, req.Color); err != nil {
		http.Error(w, `{"error":"bad_slot"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(board(sess))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ResetBoard()
	_ = json.NewEncoder(w).Encode(board(sess))
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.NewRound()
	st := sess.State()
	if err := s.db.StartRound(r.Context(), s.owner(w, r), st.RoundID, sess.ID(), string(st.Scoring)); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID()).Msg("insert round row")
	}
	_ = json.NewEncoder(w).Encode(board(sess))
}

// ------------------------------ /submit ------------------------------------

type submitReq struct {
	Guess []game.Color `json:"guess"` // optional; replaces all four selections
}

type submitRes struct {
	boardRes
	ExactMatches int  `json:"exactMatches"`
	RoundStarted bool `json:"roundStarted"`
}

// handleSubmit evaluates the board, persists progress (best effort), and
// returns the rendered result.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)

	var sub game.Submission
	var err error
	if req.Guess != nil {
		if len(req.Guess) != game.Slots {
			http.Error(w, `{"error":"guess_needs_4_colors"}`, http.StatusBadRequest)
			return
		}
		sub, err = sess.SubmitCode(game.Code(req.Guess))
	} else {
		sub, err = sess.SubmitGuess()
	}
	if errors.Is(err, game.ErrIncompleteGuess) {
		http.Error(w, incompleteGuessBody, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := s.owner(w, r)
	if sub.RoundStarted {
		if err := s.db.StartRound(r.Context(), owner, sub.RoundID, sess.ID(), string(sess.State().Scoring)); err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID()).Msg("insert round row")
		}
	}
	if err := s.db.RecordGuess(r.Context(), owner, sub.RoundID, sub.Solved, sess.RoundElapsed()); err != nil {
		log.Warn().Err(err).Str("roundId", sub.RoundID).Msg("record guess")
	}
	if sub.Solved {
		log.Info().Str("gameId", sess.ID()).Int("attempts", sub.Attempts).Msg("round solved")
	}

	_ = json.NewEncoder(w).Encode(submitRes{
		boardRes:     board(sess),
		ExactMatches: sub.ExactMatches,
		RoundStarted: sub.RoundStarted,
	})
}

// ------------------------------- debug --------------------------------------

// handleRevealSecret answers 404 unless DEBUG is enabled.
func (s *Server) handleRevealSecret(w http.ResponseWriter, r *http.Request) {
	secret, err := sessionFrom(r).RevealSecret(s.cfg.Debug)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	log.Debug().Str("gameId", sessionFrom(r).ID()).Msg("secret revealed")
	_ = json.NewEncoder(w).Encode(map[string]any{"secret": secret})
}

// ------------------------------- helpers ------------------------------------

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// owner identifies the caller for round history.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) store.Owner {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return store.Owner{UserID: me.ID}
	}
	return store.Owner{AnonID: s.ensureAnonID(w, r)}
}
