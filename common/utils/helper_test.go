package utils

import (
	"regexp"
	"testing"
)

func TestNewID(t *testing.T) {
	re := regexp.MustCompile(`^match_[A-Za-z0-9_-]{12}$`)

	seen := map[string]bool{}
	for i := 0; i < 10000; i++ {
		id := NewID("match")
		if !re.MatchString(id) {
			t.Fatalf("id %q does not match %s", id, re)
		}
		seen[id] = true
	}
	if len(seen) != 10000 {
		t.Fatalf("expected unique ids, got %d distinct", len(seen))
	}
}
