package discover

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/logging"
)

func TestStartThenStopCancelsRunningCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "data")

	b := newTestBus(t)
	d := New(b, nil, logging.RootLogger)

	var mu sync.Mutex
	var count int
	bus.Register(b, ClassFileDiscovered, func(e FileDiscoveredEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	savedInitial := config.InitialDelaySeconds.Get()
	config.InitialDelaySeconds.Set(0)
	defer config.InitialDelaySeconds.Set(savedInitial)

	d.Start("SER1", root)
	time.Sleep(100 * time.Millisecond)
	d.Stop("SER1")

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected the initial walk to discover 1 file, got %d", count)
	}
}

func TestStartingTwiceSupersedesPriorCycle(t *testing.T) {
	root := t.TempDir()
	b := newTestBus(t)
	d := New(b, nil, logging.RootLogger)

	savedInitial := config.InitialDelaySeconds.Get()
	config.InitialDelaySeconds.Set(0)
	defer config.InitialDelaySeconds.Set(savedInitial)

	d.Start("SER1", root)
	d.mu.Lock()
	first := d.cancels["SER1"]
	d.mu.Unlock()

	d.Start("SER1", root)
	d.mu.Lock()
	second := d.cancels["SER1"]
	d.mu.Unlock()

	if first == nil || second == nil {
		t.Fatal("expected both starts to register a cancel func")
	}

	d.Stop("SER1")
}

// stubScans records BeginScan/EndScan calls for a single serial.
type stubScans struct {
	mu     sync.Mutex
	began  int
	ended  int
	serial string
}

func (s *stubScans) BeginScan(serial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.began++
	s.serial = serial
}

func (s *stubScans) EndScan(serial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended++
	s.serial = serial
}

func (s *stubScans) counts() (began, ended int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.began, s.ended
}

func TestRunCycleNotifiesScanAroundWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "data")

	b := newTestBus(t)
	scans := &stubScans{}
	d := New(b, scans, logging.RootLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.runCycle(ctx, "SER1", root) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	began, ended := scans.counts()
	if began == 0 || ended == 0 {
		t.Errorf("expected at least one BeginScan/EndScan pair around the walk, got began=%d ended=%d", began, ended)
	}
	if scans.serial != "SER1" {
		t.Errorf("expected scan notifications for SER1, got %q", scans.serial)
	}
}

func TestPauseBlocksRestartUntilResumed(t *testing.T) {
	b := newTestBus(t)
	d := New(b, nil, logging.RootLogger)
	d.Pause()

	done := make(chan struct{})
	go func() {
		d.awaitRestart(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("awaitRestart returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	d.Resume()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("awaitRestart did not return after resume")
	}
}
