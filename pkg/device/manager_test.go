package device

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/workpool"
)

func newTestManager(t *testing.T, roots map[string]string) (*Manager, *bus.Bus) {
	t.Helper()
	pool := workpool.New(2)
	t.Cleanup(pool.Terminate)
	b := bus.New(pool, logging.RootLogger)

	enumerate := func() ([]string, error) {
		paths := make([]string, 0, len(roots))
		for path := range roots {
			paths = append(paths, path)
		}
		return paths, nil
	}
	serialOf := func(root string) (string, error) { return roots[root], nil }
	labelOf := func(root string) (string, error) { return filepath.Base(root), nil }

	path := filepath.Join(t.TempDir(), "known-serials")
	return New(path, enumerate, serialOf, labelOf, b, logging.RootLogger), b
}

func TestTickCreatesNewDeviceAndEmitsNewJoined(t *testing.T) {
	m, b := newTestManager(t, map[string]string{"/media/usb0": "SER1"})

	var mu sync.Mutex
	var got int
	bus.Register(b, ClassNewJoined, func(e NewJoinedEvent) {
		mu.Lock()
		got++
		mu.Unlock()
	})

	m.tick()

	mu.Lock()
	defer mu.Unlock()
	if got != 1 {
		t.Errorf("expected 1 DEVICE_NEW_JOINED event, got %d", got)
	}

	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].Serial != "SER1" || snap[0].State != StatePresent {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestTickTransitionsAbsentDeviceOffline(t *testing.T) {
	roots := map[string]string{"/media/usb0": "SER1"}
	m, b := newTestManager(t, roots)

	var mu sync.Mutex
	var removed int
	bus.Register(b, ClassRemoved, func(e RemovedEvent) {
		mu.Lock()
		removed++
		mu.Unlock()
	})

	m.tick()
	delete(roots, "/media/usb0")
	m.tick()

	mu.Lock()
	defer mu.Unlock()
	if removed != 1 {
		t.Errorf("expected 1 DEVICE_REMOVED event, got %d", removed)
	}

	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].State != StateOffline {
		t.Errorf("expected device to be OFFLINE after removal, got %+v", snap)
	}
}

func TestTickMergesGhostOnReinsertion(t *testing.T) {
	roots := map[string]string{"/media/usb0": "SER1"}
	m, b := newTestManager(t, roots)

	m.tick()
	delete(roots, "/media/usb0")
	m.tick()

	var mu sync.Mutex
	var inserted int
	bus.Register(b, ClassInserted, func(e InsertedEvent) {
		mu.Lock()
		inserted++
		mu.Unlock()
	})

	roots["/media/usb0"] = "SER1"
	m.tick()

	mu.Lock()
	defer mu.Unlock()
	if inserted != 1 {
		t.Errorf("expected 1 DEVICE_INSERTED event, got %d", inserted)
	}
}

func TestTickIdlesAPresentDeviceOnTheFollowingTick(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{"/media/usb0": "SER1"})

	m.tick()
	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].State != StatePresent {
		t.Fatalf("expected SER1 to be PRESENT after the first tick, got %+v", snap)
	}

	m.tick()
	snap = m.Snapshot()
	if len(snap) != 1 || snap[0].State != StateIdle {
		t.Errorf("expected SER1 to be IDLE after a second tick finds it still present, got %+v", snap)
	}
}

func TestBeginScanAndEndScanToggleScanningAndEmitStateChanged(t *testing.T) {
	m, b := newTestManager(t, map[string]string{"/media/usb0": "SER1"})
	m.tick()
	m.tick()

	var mu sync.Mutex
	var transitions []State
	bus.Register(b, ClassStateChanged, func(e StateChangedEvent) {
		mu.Lock()
		transitions = append(transitions, e.NewState)
		mu.Unlock()
	})

	m.BeginScan("SER1")
	if snap := m.Snapshot(); snap[0].State != StateScanning {
		t.Errorf("expected SER1 to be SCANNING after BeginScan, got %s", snap[0].State)
	}

	m.EndScan("SER1")
	if snap := m.Snapshot(); snap[0].State != StateIdle {
		t.Errorf("expected SER1 to be IDLE after EndScan, got %s", snap[0].State)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 2 || transitions[0] != StateScanning || transitions[1] != StateIdle {
		t.Errorf("expected STATE_CHANGED(SCANNING) then STATE_CHANGED(IDLE), got %v", transitions)
	}
}

func TestBeginScanIgnoresUnknownAndOfflineSerials(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{"/media/usb0": "SER1"})
	m.tick()

	m.BeginScan("UNKNOWN")
	if len(m.Snapshot()) != 1 {
		t.Errorf("expected BeginScan on an unknown serial to be a no-op")
	}
}

func TestBlacklistedSerialIsNeverTracked(t *testing.T) {
	config.DeviceBlacklistBySerial.Set([]string{"SER1"})
	defer config.DeviceBlacklistBySerial.Clear()

	m, _ := newTestManager(t, map[string]string{"/media/usb0": "SER1"})
	m.tick()

	if len(m.Snapshot()) != 0 {
		t.Errorf("expected blacklisted serial to never be tracked, got %+v", m.Snapshot())
	}
}

func TestIsPresentAndLabel(t *testing.T) {
	m, _ := newTestManager(t, map[string]string{"/media/usb0": "SER1"})

	if m.IsPresent("SER1") {
		t.Error("expected SER1 not to be present before the first tick")
	}

	m.tick()

	if !m.IsPresent("SER1") {
		t.Error("expected SER1 to be present after the first tick")
	}
	if label, ok := m.Label("SER1"); !ok || label != "usb0" {
		t.Errorf("expected label %q, got %q (ok=%v)", "usb0", label, ok)
	}
	if _, ok := m.Label("UNKNOWN"); ok {
		t.Error("expected Label to report false for an untracked serial")
	}
}

func TestLoadRecallsGhostsFromKnownSerials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known-serials")
	if err := saveKnownSerials(path, []knownSerialRecord{{serial: "SER1", label: "Backup"}}, logging.RootLogger); err != nil {
		t.Fatal("saveKnownSerials failed:", err)
	}

	pool := workpool.New(1)
	defer pool.Terminate()
	m := New(path, func() ([]string, error) { return nil, nil }, nil, nil, bus.New(pool, logging.RootLogger), logging.RootLogger)

	if err := m.Load(); err != nil {
		t.Fatal("Load failed:", err)
	}

	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].Serial != "SER1" || snap[0].State != StateOffline {
		t.Errorf("expected recalled ghost, got %+v", snap)
	}
}
