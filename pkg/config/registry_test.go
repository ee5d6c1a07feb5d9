package config

import "testing"

func TestEntryDefaultAndOverride(t *testing.T) {
	r := NewRegistry()
	entry := Define(r, "test", "greeting", "a test entry", "hello")

	if got := entry.Get(); got != "hello" {
		t.Fatalf("expected default %q, got %q", "hello", got)
	}

	entry.Set("goodbye")
	if got := entry.Get(); got != "goodbye" {
		t.Fatalf("expected override %q, got %q", "goodbye", got)
	}

	entry.Clear()
	if got := entry.Get(); got != "hello" {
		t.Fatalf("expected default after clear %q, got %q", "hello", got)
	}
}

func TestDefineDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	Define(r, "test", "dup", "first", 1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate entry declaration")
		}
	}()
	Define(r, "test", "dup", "second", 2)
}

func TestResetAll(t *testing.T) {
	r := NewRegistry()
	a := Define(r, "test", "a", "", int64(1))
	b := Define(r, "test", "b", "", int64(2))

	a.Set(10)
	b.Set(20)
	r.ResetAll()

	if a.Get() != 1 || b.Get() != 2 {
		t.Fatalf("expected both entries reset to defaults, got a=%d b=%d", a.Get(), b.Get())
	}
}

func TestResetEntry(t *testing.T) {
	r := NewRegistry()
	entry := Define(r, "test", "solo", "", false)
	entry.Set(true)

	if !r.ResetEntry("test", "solo") {
		t.Fatal("expected ResetEntry to find the declared entry")
	}
	if entry.Get() != false {
		t.Fatal("expected entry reset to default")
	}
	if r.ResetEntry("test", "missing") {
		t.Fatal("expected ResetEntry to report false for an undeclared entry")
	}
}

func TestIsSerialBlacklisted(t *testing.T) {
	DeviceBlacklistBySerial.Set([]string{"ABC123", "XYZ999"})
	defer DeviceBlacklistBySerial.Clear()

	if !IsSerialBlacklisted("ABC123") {
		t.Fatal("expected ABC123 to be blacklisted")
	}
	if IsSerialBlacklisted("OTHER") {
		t.Fatal("did not expect OTHER to be blacklisted")
	}
}
