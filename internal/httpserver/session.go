// internal/httpserver/session.go
//
// Anonymous device sessions and the admin guard.
//
// There are no user accounts: every client gets a signed anonymous session
// token (HS256 JWT in an HttpOnly cookie, bearer header also accepted) the
// first time it starts a round. The session ID ties rounds to the device
// that played them, so a win can only be submitted to the leaderboard by
// the session that earned it.
//
// The destructive leaderboard clear can be guarded with a bcrypt passcode
// hash via ADMIN_PASSCODE_HASH; when unset the route is open (dev mode).

package httpserver

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "guessnum_session"

// ensureSession returns the request's session ID, minting and setting a new
// signed session cookie when the request carries none (or an invalid one).
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if sid := sessionFromRequest(r); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	tok, exp, err := signSession(sid)
	if err != nil {
		// The round stays playable for the life of the process either way.
		log.Warn().Err(err).Msg("sign session token")
		return sid
	}
	secure := os.Getenv("APP_ENV") == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for cross-site contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return sid
}

// sessionFromRequest extracts and verifies a session token from the
// Authorization header or the session cookie. Returns "" when absent or
// invalid; callers then mint a fresh session.
func sessionFromRequest(r *http.Request) string {
	tok := bearerOrCookie(r)
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
	})
	if err != nil || !t.Valid {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

// signSession creates an HS256 JWT carrying the session ID with a
// configurable expiry (SESSION_EXPIRES_DAYS; default 180).
func signSession(sid string) (string, time.Time, error) {
	secret := getEnv("JWT_SECRET", "dev_secret_change_me")
	days := 180
	if v := os.Getenv("SESSION_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

// bearerOrCookie extracts a token from the Authorization header or the
// session cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// adminOK checks the X-Admin-Passcode header against ADMIN_PASSCODE_HASH
// (a bcrypt hash). An empty hash disables the guard.
func adminOK(r *http.Request) bool {
	hash := os.Getenv("ADMIN_PASSCODE_HASH")
	if hash == "" {
		return true
	}
	pass := r.Header.Get("X-Admin-Passcode")
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}
