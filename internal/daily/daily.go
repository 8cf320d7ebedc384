// internal/daily/daily.go
//
// Daily puzzle seeding.
// Every player gets the same secret for a date: the session's random source
// is seeded from HMAC-SHA256(salt, YYYY-MM-DD). Dates are UTC.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a math/rand seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Source returns the random source for the date's puzzle. Every player
// drawing from it gets the same secret.
func Source(date time.Time, salt string) *rand.Rand {
	return rand.New(rand.NewSource(Seed(date, salt)))
}
