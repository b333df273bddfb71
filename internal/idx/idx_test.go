package idx

import (
	"testing"
	"time"
)

func TestNewProducesParseableTokens(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok := New()
		if seen[tok] {
			t.Fatalf("duplicate token: %s", tok)
		}
		seen[tok] = true
		if _, err := Parse(tok); err != nil {
			t.Fatalf("generated token did not parse: %s: %v", tok, err)
		}
	}
}

func TestTokensSortByCreationTime(t *testing.T) {
	a := NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "  ", "not-a-ulid", "abc123"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)
	tok := NewAt(at)
	got := Time(tok)
	if got.Sub(at) > time.Millisecond || at.Sub(got) > time.Millisecond {
		t.Fatalf("embedded time %v too far from %v", got, at)
	}
}
