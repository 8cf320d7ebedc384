// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Puzzle" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's puzzle (creates or reuses session)
//   - POST /daily/submit      → submit a guess for today's puzzle
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Every player gets the same secret for a date: the session's random source
// is seeded from HMAC(salt, date). Each player can solve once per day
// (enforced by DB + in-memory session).

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient state for an in-progress daily puzzle.
// mu serializes submissions so only one can finish the puzzle.
type dailySession struct {
	mu       sync.Mutex
	Session  *game.Session
	UserID   string
	Date     string
	Finished bool
}

func (ds *dailySession) finished() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.Finished
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db.DB()),
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/submit", dd.handleSubmit)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// userID returns the authenticated user ID if logged in, otherwise the
// anonymous cookie ID.
func (d *dailyServer) userID(w http.ResponseWriter, r *http.Request) string {
	o := d.srv.owner(w, r)
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

// handleNew creates or reuses today's session.
// - If the player already has a DB row for today → Played=true.
// - Otherwise create/reuse an in-memory session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if ds, ok := d.sessions[key]; ok {
		_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: ds.Session.ID(), Date: date, Played: ds.finished()})
		return
	}
	sess := game.NewSession(
		game.WithSource(daily.Source(now, d.srv.cfg.DailySalt)),
		game.WithScoring(d.srv.cfg.Scoring),
		game.WithClock(d.srv.now),
	)
	d.sessions[key] = &dailySession{Session: sess, UserID: uid, Date: date}
	_ = json.NewEncoder(w).Encode(dailyNewRes{GameID: sess.ID(), Date: date})
}

// -----------------------------------------------------------------------------
// /daily/submit

type dailySubmitReq struct {
	GameID string       `json:"gameId"`
	Guess  []game.Color `json:"guess"`
}

type dailySubmitRes struct {
	Slots        [game.Slots]game.SlotView `json:"slots"`
	ExactMatches int                       `json:"exactMatches"`
	State        string                    `json:"state"` // in_progress | won | locked
	Attempts     int                       `json:"attempts"`
}

// handleSubmit applies a full guess to today's session.
// - Rejects unknown sessions and finished puzzles (locked).
// - Persists the result on the winning guess.
func (d *dailyServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)

	var p dailySubmitReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if p.GameID == "" || len(p.Guess) != game.Slots {
		http.Error(w, `{"error":"invalid"}`, http.StatusBadRequest)
		return
	}

	date := daily.DateKey(d.srv.now())
	d.mu.Lock()
	ds, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || ds.Session.ID() != p.GameID {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
		return
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.Finished {
		_ = json.NewEncoder(w).Encode(dailySubmitRes{State: "locked", Attempts: ds.Session.State().Attempts})
		return
	}

	sub, err := ds.Session.SubmitCode(game.Code(p.Guess))
	if errors.Is(err, game.ErrIncompleteGuess) {
		http.Error(w, incompleteGuessBody, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := dailySubmitRes{
		Slots:        ds.Session.State().SlotViews(),
		ExactMatches: sub.ExactMatches,
		State:        "in_progress",
		Attempts:     sub.Attempts,
	}
	if sub.Solved {
		ds.Finished = true
		res.State = "won"
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:    uid,
			Date:      date,
			Guesses:   sub.Attempts + 1,
			ElapsedMs: ds.Session.RoundElapsed().Milliseconds(),
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// evictBefore drops sessions whose date is not now's date and reports how
// many were removed.
func (d *dailyServer) evictBefore(now time.Time) int {
	today := daily.DateKey(now)
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k, ds := range d.sessions {
		if ds.Date != today {
			delete(d.sessions, k)
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
