// Package idx generates opaque, lexicographically sortable link tokens.
//
// Tokens are ULIDs from a monotonic entropy source, so tokens minted in the
// same millisecond still sort in creation order. They carry no secret
// material; possession of a token only grants what the onboarding link
// itself grants.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed token string.
var ErrInvalid = errors.New("idx: invalid token")

var (
	globalOnce sync.Once
	global     *generator
)

type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) newAt(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

func initGlobal() {
	global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a new token based on the current UTC time.
func New() string {
	globalOnce.Do(initGlobal)
	return global.newAt(time.Now().UTC())
}

// NewAt generates a token at the provided time. Useful for tests.
func NewAt(t time.Time) string {
	globalOnce.Do(initGlobal)
	return global.newAt(t.UTC())
}

// Parse validates a token string and returns its canonical form.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return s, nil
}

// Time extracts the embedded UTC timestamp; zero time for invalid tokens.
func Time(s string) time.Time {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
