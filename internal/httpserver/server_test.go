package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/guessnum/go-server/internal/game"
	"github.com/guessnum/go-server/internal/leaderboard"
	"github.com/guessnum/go-server/internal/session"
	"github.com/guessnum/go-server/internal/storage"
)

// testClient wraps an httptest server with a cookie-jar client so the
// anonymous session cookie behaves like it would in a real client.
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	board := leaderboard.New(storage.NewMemoryStore())
	srv := New(session.NewMemoryStore(), board)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newTestClient(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *testClient) post(path string, body, out any) int {
	c.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)
	res, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(raw))
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func (c *testClient) get(path string, out any) int {
	c.t.Helper()
	res, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func (c *testClient) newRound(difficulty string, target int) roundRes {
	c.t.Helper()
	var res roundRes
	code := c.post("/round/new", newRoundReq{Difficulty: difficulty, Target: target}, &res)
	require.Equal(c.t, http.StatusOK, code)
	return res
}

func TestWinFlow(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)

	round := c.newRound("easy", 7)
	assert.Equal(t, game.Easy, round.Difficulty)
	assert.Equal(t, 6, round.MaxAttempts)

	var gr guessRes
	code := c.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "10"}, &gr)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.OutcomeContinue, gr.Outcome.Kind)
	assert.Equal(t, "Lower.", gr.Hint)

	code = c.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "5"}, &gr)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Higher.", gr.Hint)

	code = c.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "7"}, &gr)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.OutcomeWon, gr.Outcome.Kind)
	assert.Equal(t, 3, gr.Outcome.Attempts)
	assert.Equal(t, game.StateWon, gr.State)

	var rec struct {
		Entry       leaderboard.Entry   `json:"entry"`
		Leaderboard []leaderboard.Entry `json:"leaderboard"`
	}
	code = c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Ann"}, &rec)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ann", rec.Entry.PlayerName)
	assert.Equal(t, 3, rec.Entry.Attempts)
	assert.Equal(t, 20, rec.Entry.RangeMax)
	assert.Len(t, rec.Leaderboard, 1)

	// Same win cannot be recorded twice.
	code = c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Ann"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var entries []leaderboard.Entry
	code = c.get("/leaderboard", &entries)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, entries, 1)
}

func TestUnknownDifficulty(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)
	code := c.post("/round/new", newRoundReq{Difficulty: "nightmare"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGuessUnknownRound(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)
	code := c.post("/round/guess", guessReq{RoundID: "nope", Guess: "3"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoundsAreSessionScoped(t *testing.T) {
	_, ts := newServer(t)
	owner := newTestClient(t, ts)
	round := owner.newRound("easy", 7)

	// A different session (fresh cookie jar) cannot see the round.
	stranger := newTestClient(t, ts)
	code := stranger.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "7"}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = stranger.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Mallory"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecordWinValidation(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)

	round := c.newRound("easy", 7)

	// Round not won yet.
	code := c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Ann"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var gr guessRes
	_ = c.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "7"}, &gr)
	require.Equal(t, game.StateWon, gr.State)

	// Blank names are rejected and consume nothing.
	code = c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "   "}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	var entries []leaderboard.Entry
	_ = c.get("/leaderboard", &entries)
	assert.Empty(t, entries)

	// A proper name still works afterwards.
	code = c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Ann"}, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDailyRound(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)

	var res roundRes
	code := c.post("/round/new", newRoundReq{Difficulty: "medium", Mode: "daily"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, res.DailyDate)
	assert.Equal(t, game.StateActive, res.State)
}

func TestClearLeaderboard(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)

	round := c.newRound("easy", 7)
	var gr guessRes
	_ = c.post("/round/guess", guessReq{RoundID: round.RoundID, Guess: "7"}, &gr)
	code := c.post("/leaderboard", recordWinReq{RoundID: round.RoundID, PlayerName: "Ann"}, nil)
	require.Equal(t, http.StatusOK, code)

	code = c.post("/leaderboard/clear", struct{}{}, nil)
	require.Equal(t, http.StatusOK, code)

	var entries []leaderboard.Entry
	_ = c.get("/leaderboard", &entries)
	assert.Empty(t, entries)
}

func TestClearRequiresPasscodeWhenConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSCODE_HASH", string(hash))

	_, ts := newServer(t)
	c := newTestClient(t, ts)

	code := c.post("/leaderboard/clear", struct{}{}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/leaderboard/clear", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Passcode", "sesame")
	res, err := c.http.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHealth(t *testing.T) {
	_, ts := newServer(t)
	c := newTestClient(t, ts)

	var out map[string]bool
	code := c.get("/health", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, out["ok"])

	var tiers []game.Difficulty
	code = c.get("/difficulties", &tiers)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.Difficulties, tiers)
}
