package state

import "testing"

func TestMarker(t *testing.T) {
	var m Marker
	if m.Marked() {
		t.Fatal("expected zero-value marker to be unmarked")
	}

	m.Mark()
	if !m.Marked() {
		t.Fatal("expected marker to be marked after Mark")
	}

	m.Unmark()
	if m.Marked() {
		t.Fatal("expected marker to be unmarked after Unmark")
	}
}
