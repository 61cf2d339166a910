// internal/httpserver/server.go
//
// HTTP wiring for the guess-the-number backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/difficulties".
//   - Round endpoints: POST /round/new, POST /round/guess.
//   - Leaderboard endpoints: GET /leaderboard, POST /leaderboard,
//     POST /leaderboard/clear (admin-guarded).
//   - Anonymous session cookie handling (see session.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Rounds belong to the session that started them; other sessions see
//     not_found rather than a hint that the round exists.
//   - Gameplay never blocks on persistence: the leaderboard store handles
//     storage failures internally.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/guessnum/go-server/internal/daily"
	"github.com/guessnum/go-server/internal/game"
	"github.com/guessnum/go-server/internal/leaderboard"
	"github.com/guessnum/go-server/internal/session"
)

// Server bundles router, round session store, and the leaderboard store.
type Server struct {
	r      *chi.Mux
	rounds session.Store
	board  *leaderboard.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(rounds session.Store, board *leaderboard.Store) *Server {
	s := &Server{r: chi.NewRouter(), rounds: rounds, board: board}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessnum-go","endpoints":["/health","/difficulties","POST /round/new","POST /round/guess","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Static tier table for clients.
	s.r.Get("/difficulties", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(game.Difficulties)
	})

	// Rounds
	s.r.Post("/round/new", s.handleNewRound)
	s.r.Post("/round/guess", s.handleGuess)

	// Leaderboard
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.r.Post("/leaderboard", s.handleRecordWin)
	s.r.Post("/leaderboard/clear", s.handleClear)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Passcode")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ ROUNDS --------------------------------------

// newRoundReq/roundRes payloads for POST /round/new.
type newRoundReq struct {
	Difficulty string `json:"difficulty"` // "easy" | "medium" | "hard"
	Mode       string `json:"mode"`       // "" | "daily"
	Target     int    `json:"target"`     // optional fixed target (testing)
}
type roundRes struct {
	RoundID     string     `json:"roundId"`
	Difficulty  game.Key   `json:"difficulty"`
	Min         int        `json:"min"`
	Max         int        `json:"max"`
	MaxAttempts int        `json:"maxAttempts"`
	Attempts    int        `json:"attempts"`
	Hint        string     `json:"hint"`
	State       game.State `json:"state"`
	DailyDate   string     `json:"dailyDate,omitempty"`
}

// handleNewRound starts a fresh round for the requested tier and stores it
// against the caller's session.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	d, ok := game.Lookup(game.Key(req.Difficulty))
	if !ok {
		http.Error(w, `{"error":"unknown_difficulty"}`, http.StatusBadRequest)
		return
	}

	var rd game.Round
	switch {
	case req.Mode == "daily":
		now := time.Now()
		rd = game.StartWithTarget(d, daily.TargetFor(now, getEnv("DAILY_SALT", "guessnum"), d))
		rd.DailyDate = daily.DateKey(now)
	case req.Target >= d.Min && req.Target <= d.Max:
		// Fixed target, for client test harnesses.
		rd = game.StartWithTarget(d, req.Target)
	default:
		rd = game.Start(d)
	}

	sid := s.ensureSession(w, r)
	if err := s.rounds.Save(r.Context(), session.Handle{Round: rd, Owner: sid}); err != nil {
		log.Error().Err(err).Msg("save round")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(roundView(rd))
}

// guessReq/guessRes payloads for POST /round/guess.
type guessReq struct {
	RoundID string `json:"roundId"`
	Guess   string `json:"guess"`
}
type guessRes struct {
	Outcome      game.Outcome `json:"outcome"`
	State        game.State   `json:"state"`
	Attempts     int          `json:"attempts"`
	AttemptsLeft int          `json:"attemptsLeft"`
	Hint         string       `json:"hint"`
}

// handleGuess applies one guess to a round owned by the caller's session.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	h, err := s.rounds.Get(r.Context(), req.RoundID)
	if err != nil || h.Owner != s.ensureSession(w, r) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	rd, out := h.Round.Guess(req.Guess)
	h.Round = rd
	if err := s.rounds.Save(r.Context(), h); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(guessRes{
		Outcome:      out,
		State:        rd.State,
		Attempts:     rd.Attempts,
		AttemptsLeft: rd.Difficulty.MaxAttempts - rd.Attempts,
		Hint:         rd.Hint,
	})
}

// roundView converts a round into its client-safe response (no target).
func roundView(rd game.Round) roundRes {
	return roundRes{
		RoundID:     rd.ID,
		Difficulty:  rd.Difficulty.Key,
		Min:         rd.Difficulty.Min,
		Max:         rd.Difficulty.Max,
		MaxAttempts: rd.Difficulty.MaxAttempts,
		Attempts:    rd.Attempts,
		Hint:        rd.Hint,
		State:       rd.State,
		DailyDate:   rd.DailyDate,
	}
}

// ---------------------------- LEADERBOARD -----------------------------------

// handleLeaderboard returns the ranked collection snapshot.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.board.Entries())
}

// recordWinReq payload for POST /leaderboard.
type recordWinReq struct {
	RoundID    string `json:"roundId"`
	PlayerName string `json:"playerName"`
}

// handleRecordWin writes a leaderboard entry for a won round.
// The round must belong to the caller's session, be in the won state, and
// not have been recorded before.
func (s *Server) handleRecordWin(w http.ResponseWriter, r *http.Request) {
	var req recordWinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	h, err := s.rounds.Get(r.Context(), req.RoundID)
	if err != nil || h.Owner != s.ensureSession(w, r) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if h.Round.State != game.StateWon {
		http.Error(w, `{"error":"round_not_won"}`, http.StatusConflict)
		return
	}
	if h.Recorded {
		http.Error(w, `{"error":"already_recorded"}`, http.StatusConflict)
		return
	}

	entry, err := s.board.RecordWin(r.Context(), req.PlayerName,
		h.Round.Difficulty.Key, h.Round.Attempts, h.Round.Difficulty.Max)
	if errors.Is(err, leaderboard.ErrEmptyName) {
		http.Error(w, `{"error":"empty_name"}`, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"record_failed"}`, http.StatusInternalServerError)
		return
	}

	h.Recorded = true
	if err := s.rounds.Save(r.Context(), h); err != nil {
		log.Warn().Err(err).Str("roundId", h.Round.ID).Msg("mark round recorded")
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"entry":       entry,
		"leaderboard": s.board.Entries(),
	})
}

// handleClear empties the leaderboard and deletes the persisted key.
// Guarded by ADMIN_PASSCODE_HASH when configured.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !adminOK(r) {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	s.board.Clear(r.Context())
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
