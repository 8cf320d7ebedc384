package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/store"
)

type testServer struct {
	*Server
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, debug bool) *testServer {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		Debug:          debug,
		Scoring:        game.ScoringSimple,
		DailySalt:      "test_salt",
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "mastermind_token",
		ClientOrigin:   "http://localhost:5173",
		SessionTTL:     2 * time.Hour,
	}
	return &testServer{Server: New(cfg, store.NewMemoryStore(), db)}
}

// do sends a request, carrying cookies between calls like a browser would.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		ts.setCookie(c)
	}
	return rec
}

// send is a goroutine-safe request with a fixed cookie jar.
func (ts *testServer) send(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) setCookie(c *http.Cookie) {
	for i, old := range ts.cookies {
		if old.Name == c.Name {
			ts.cookies[i] = c
			return
		}
	}
	ts.cookies = append(ts.cookies, c)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// newGame creates a session and pins its secret.
func (ts *testServer) newGame(t *testing.T, secret game.Code) *game.Session {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/game/new", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[newGameRes](t, rec)

	// Swap in a session with a known secret under the same flow.
	sess := game.NewSession(game.WithSecret(secret))
	require.NoError(t, ts.sessions.Save(context.Background(), sess))
	require.NoError(t, ts.sessions.Delete(context.Background(), res.GameID))
	require.NoError(t, ts.db.StartRound(context.Background(), store.Owner{AnonID: ts.anonID()}, sess.State().RoundID, sess.ID(), "simple"))
	return sess
}

func (ts *testServer) anonID() string {
	for _, c := range ts.cookies {
		if c.Name == anonCookieName {
			return c.Value
		}
	}
	return ""
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestGame_SelectAndSubmit(t *testing.T) {
	ts := newTestServer(t, false)
	sess := ts.newGame(t, game.Code{game.Red, game.Orange, game.Yellow, game.White})
	base := "/game/" + sess.ID()

	for i, c := range []string{"red", "white", "orange", "green"} {
		rec := ts.do(t, http.MethodPut, base+"/slot/"+string(rune('1'+i)), map[string]string{"color": c})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	b := decode[boardRes](t, ts.do(t, http.MethodGet, base, nil))
	assert.Equal(t, game.SlotView{Color: game.White, Border: game.BorderThin}, b.Slots[1])

	rec := ts.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[submitRes](t, rec)
	assert.Equal(t, 1, res.ExactMatches)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Attempt 1", res.Title)
	assert.Equal(t, [game.Slots]game.Border{game.BorderExact, game.BorderPresent, game.BorderPresent, game.BorderThin},
		[game.Slots]game.Border{res.Slots[0].Border, res.Slots[1].Border, res.Slots[2].Border, res.Slots[3].Border})
}

func TestGame_IncompleteGuess(t *testing.T) {
	ts := newTestServer(t, false)
	sess := ts.newGame(t, game.Code{game.Red, game.Orange, game.Yellow, game.White})
	base := "/game/" + sess.ID()

	ts.do(t, http.MethodPut, base+"/slot/1", map[string]string{"color": "red"})
	rec := ts.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Some values are not selected")
	assert.Zero(t, sess.State().Attempts)
}

func TestGame_SubmitWithBodyAndWin(t *testing.T) {
	ts := newTestServer(t, false)
	secret := game.Code{game.Blue, game.Blue, game.Green, game.Red}
	sess := ts.newGame(t, secret)
	base := "/game/" + sess.ID()

	rec := ts.do(t, http.MethodPost, base+"/submit", map[string]any{"guess": []string{"blue", "green", "green", "red"}})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[submitRes](t, rec)
	assert.Equal(t, 3, res.ExactMatches)
	assert.Equal(t, game.FeedbackPresent, res.Feedback[1])

	rec = ts.do(t, http.MethodPost, base+"/submit", map[string]any{"guess": []string{"blue", "blue", "green", "red"}})
	res = decode[submitRes](t, rec)
	assert.True(t, res.Solved)
	assert.Equal(t, "Correct", res.Title)

	rec = ts.do(t, http.MethodPost, base+"/submit", nil)
	res = decode[submitRes](t, rec)
	assert.True(t, res.RoundStarted)

	rec = ts.do(t, http.MethodPost, base+"/submit", map[string]any{"guess": []string{"blue", "blue"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, base+"/submit", map[string]any{"guess": []string{"blue", "blue", "pink", "red"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGame_ResetKeepsAttempts(t *testing.T) {
	ts := newTestServer(t, false)
	sess := ts.newGame(t, game.Code{game.Red, game.Orange, game.Yellow, game.White})
	base := "/game/" + sess.ID()

	ts.do(t, http.MethodPost, base+"/submit", map[string]any{"guess": []string{"green", "green", "green", "green"}})
	b := decode[boardRes](t, ts.do(t, http.MethodPost, base+"/reset", nil))
	assert.Equal(t, 1, b.Attempts)
	for _, v := range b.Slots {
		assert.Equal(t, game.SlotView{Color: game.None, Border: game.BorderNone}, v)
	}

	b = decode[boardRes](t, ts.do(t, http.MethodPost, base+"/round", nil))
	assert.Zero(t, b.Attempts)
	assert.Equal(t, "Mastermind", b.Title)
}

func TestGame_BadSlot(t *testing.T) {
	ts := newTestServer(t, false)
	sess := ts.newGame(t, game.Code{game.Red, game.Orange, game.Yellow, game.White})
	base := "/game/" + sess.ID()

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, base+"/slot/5", map[string]string{"color": "red"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, base+"/slot/x", map[string]string{"color": "red"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, base+"/slot/1", map[string]string{"color": "pink"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/game/missing", nil).Code)
}

func TestGame_DebugSecretGated(t *testing.T) {
	secret := game.Code{game.Red, game.Orange, game.Yellow, game.White}

	ts := newTestServer(t, false)
	sess := ts.newGame(t, secret)
	rec := ts.do(t, http.MethodGet, "/game/"+sess.ID()+"/debug/secret", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts = newTestServer(t, true)
	sess = ts.newGame(t, secret)
	rec = ts.do(t, http.MethodGet, "/game/"+sess.ID()+"/debug/secret", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"secret":["red","orange","yellow","white"]}`, rec.Body.String())
}

func TestGame_NewWithScoring(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodPost, "/game/new", map[string]string{"scoring": "classic"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[newGameRes](t, rec).GameID

	b := decode[boardRes](t, ts.do(t, http.MethodGet, "/game/"+id, nil))
	assert.Equal(t, game.ScoringClassic, b.Scoring)

	rec = ts.do(t, http.MethodPost, "/game/new", map[string]string{"scoring": "weird"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_SignupPlayAndStats(t *testing.T) {
	ts := newTestServer(t, false)

	// Play one guest round, then sign up: the round moves to the account.
	sess := ts.newGame(t, game.Code{game.Red, game.Red, game.Red, game.Red})
	ts.do(t, http.MethodPost, "/game/"+sess.ID()+"/submit", map[string]any{"guess": []string{"red", "red", "red", "red"}})

	rec := ts.do(t, http.MethodPost, "/auth/signup", map[string]string{"username": "dana", "password": "password123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dana", decode[authUser](t, rec).Username)

	rec = ts.do(t, http.MethodGet, "/rounds/mine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rounds := decode[[]store.Round](t, rec)
	var solved int
	for _, rd := range rounds {
		if rd.Status == "solved" {
			solved++
			assert.Equal(t, sess.ID(), rd.SessionID)
		}
	}
	assert.Equal(t, 1, solved)

	rec = ts.do(t, http.MethodPost, "/auth/signup", map[string]string{"username": "dana", "password": "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "dana", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/stats/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[struct {
		RoundsPlayed int `json:"roundsPlayed"`
		RoundsSolved int `json:"roundsSolved"`
	}](t, rec)
	assert.Zero(t, stats.RoundsSolved, "guest rounds are claimed but stats start at signup")
}

func TestAuth_RequireAuth(t *testing.T) {
	ts := newTestServer(t, false)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/stats/me", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Invalid token"))
}

func TestDaily_Flow(t *testing.T) {
	ts := newTestServer(t, false)
	day := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return day }

	rec := ts.do(t, http.MethodPost, "/daily/new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dailyNewRes](t, rec)
	require.NotEmpty(t, res.GameID)
	assert.Equal(t, "2026-05-04", res.Date)

	again := decode[dailyNewRes](t, ts.do(t, http.MethodPost, "/daily/new", nil))
	assert.Equal(t, res.GameID, again.GameID)

	// Same date and salt always give the same puzzle.
	secret := ts.dailySecret(t, day)

	rec = ts.do(t, http.MethodPost, "/daily/submit", map[string]any{"gameId": res.GameID, "guess": []string{"", "red", "red", "red"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	names := make([]string, game.Slots)
	for i, c := range secret {
		names[i] = c.String()
	}
	rec = ts.do(t, http.MethodPost, "/daily/submit", map[string]any{"gameId": res.GameID, "guess": names})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "won", decode[dailySubmitRes](t, rec).State)

	rec = ts.do(t, http.MethodPost, "/daily/submit", map[string]any{"gameId": res.GameID, "guess": names})
	assert.Equal(t, "locked", decode[dailySubmitRes](t, rec).State)

	played := decode[dailyNewRes](t, ts.do(t, http.MethodPost, "/daily/new", nil))
	assert.True(t, played.Played)

	lb := decode[lbRes](t, ts.do(t, http.MethodGet, "/daily/leaderboard?date=2026-05-04", nil))
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 1, lb.Top[0].Guesses)

	rec = ts.do(t, http.MethodPost, "/daily/submit", map[string]any{"gameId": "other", "guess": names})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func (ts *testServer) dailySecret(t *testing.T, day time.Time) game.Code {
	t.Helper()
	s := game.NewSession(game.WithSource(daily.Source(day, ts.cfg.DailySalt)))
	secret, err := s.RevealSecret(true)
	require.NoError(t, err)
	return secret
}

func TestGame_ConcurrentSubmitsScoreTheirOwnGuess(t *testing.T) {
	ts := newTestServer(t, false)
	sess := ts.newGame(t, game.Code{game.Red, game.Red, game.Blue, game.Blue})
	path := "/game/" + sess.ID() + "/submit"

	want := map[string][game.Slots]game.SlotFeedback{
		"red":  {game.FeedbackExact, game.FeedbackExact, game.FeedbackPresent, game.FeedbackPresent},
		"blue": {game.FeedbackPresent, game.FeedbackPresent, game.FeedbackExact, game.FeedbackExact},
	}
	var wg sync.WaitGroup
	for round := 0; round < 25; round++ {
		for color, feedback := range want {
			wg.Add(1)
			go func(color string, feedback [game.Slots]game.SlotFeedback) {
				defer wg.Done()
				rec := ts.send(http.MethodPost, path, map[string]any{"guess": []string{color, color, color, color}}, ts.cookies)
				if !assert.Equal(t, http.StatusOK, rec.Code) {
					return
				}
				var res submitRes
				if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res)) {
					assert.Equal(t, feedback, res.Feedback, "%s guess scored on a mixed board", color)
				}
			}(color, feedback)
		}
	}
	wg.Wait()
	assert.Equal(t, 50, sess.State().Attempts)
}

func TestWriteError_EscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, `near "users": syntax error`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"near \"users\": syntax error"}`, rec.Body.String())
}

func TestAuth_SignupValidationIsJSON(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodPost, "/auth/signup", map[string]string{"username": `a"b`, "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.NotEmpty(t, body["error"])
}

func TestDaily_ConcurrentWinsRecordOnce(t *testing.T) {
	ts := newTestServer(t, false)
	day := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return day }

	res := decode[dailyNewRes](t, ts.do(t, http.MethodPost, "/daily/new", nil))
	names := make([]string, game.Slots)
	for i, c := range ts.dailySecret(t, day) {
		names[i] = c.String()
	}

	states := make(chan string, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := ts.send(http.MethodPost, "/daily/submit", map[string]any{"gameId": res.GameID, "guess": names}, ts.cookies)
			var out dailySubmitRes
			if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out)) {
				states <- out.State
			}
		}()
	}
	wg.Wait()
	close(states)

	counts := map[string]int{}
	for st := range states {
		counts[st]++
	}
	assert.Equal(t, map[string]int{"won": 1, "locked": 7}, counts)
}

func TestSweep_EvictsIdleAndStaleSessions(t *testing.T) {
	ts := newTestServer(t, false)
	day := time.Now().UTC()
	ts.now = func() time.Time { return day }
	ctx := context.Background()

	sess := ts.newGame(t, game.Code{game.Red, game.Orange, game.Yellow, game.White})
	ts.do(t, http.MethodPost, "/daily/new", nil)

	ts.sweep(ctx)
	_, err := ts.sessions.Get(ctx, sess.ID())
	require.NoError(t, err, "fresh sessions survive")
	assert.Len(t, ts.daily.sessions, 1)

	day = day.Add(3 * time.Hour).AddDate(0, 0, 1)
	ts.sweep(ctx)
	_, err = ts.sessions.Get(ctx, sess.ID())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, ts.daily.sessions)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/game/"+sess.ID(), nil).Code)
}
