package idgen

import "testing"

func TestULIDGenerator_Generate(t *testing.T) {
	g := NewULIDGenerator()

	a := g.Generate()
	b := g.Generate()

	if len(a) != 26 {
		t.Fatalf("expected 26-char ULID, got %d chars: %q", len(a), a)
	}
	if a == b {
		t.Fatalf("expected unique IDs, got %q twice", a)
	}
}
