package device

import "testing"

func TestMergeTransitionsGhostToPresent(t *testing.T) {
	d := newGhost("serial-1", "Old Label")
	if d.State != StateOffline || d.Root != nil {
		t.Fatal("expected a newly constructed ghost to be OFFLINE with no root")
	}

	d.merge("/media/usb0", "New Label")

	if d.State != StatePresent {
		t.Errorf("expected PRESENT after merge, got %s", d.State)
	}
	if d.Root == nil || *d.Root != "/media/usb0" {
		t.Errorf("expected root to be set after merge, got %v", d.Root)
	}
	if d.Label != "New Label" {
		t.Errorf("expected label to be updated, got %q", d.Label)
	}
}

func TestConsumeChangeReportsOnceAndClears(t *testing.T) {
	d := newGhost("serial-1", "Label")
	d.transitionTo(StatePresent)

	old, current, changed := d.consumeChange()
	if !changed || old != StateOffline || current != StatePresent {
		t.Fatalf("unexpected first consumeChange result: %v %v %v", old, current, changed)
	}

	_, _, changedAgain := d.consumeChange()
	if changedAgain {
		t.Error("consumeChange should report no change until another transition occurs")
	}
}

func TestTransitionToSameStateIsNotAChange(t *testing.T) {
	d := newReal("serial-1", "/media/usb0", "Label")
	d.transitionTo(StatePresent)
	if _, _, changed := d.consumeChange(); changed {
		t.Error("transitioning to the current state should not mark a change")
	}
}

func TestGoOfflineClearsRoot(t *testing.T) {
	d := newReal("serial-1", "/media/usb0", "Label")
	d.goOffline()
	if d.Root != nil {
		t.Error("expected root to be cleared after going offline")
	}
	if d.State != StateOffline {
		t.Errorf("expected OFFLINE, got %s", d.State)
	}
}
