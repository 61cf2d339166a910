package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/guessnum/go-server/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TargetFor returns the deterministic daily target for a date and tier using
// HMAC(salt, YYYY-MM-DD|tier) reduced into [d.Min, d.Max]. Every player sees
// the same number for the same date, tier, and salt.
func TargetFor(date time.Time, salt string, d game.Difficulty) int {
	span := d.Max - d.Min + 1
	if span <= 0 {
		return d.Min
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + string(d.Key)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return d.Min + int(n%uint64(span))
}
