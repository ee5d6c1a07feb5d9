package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/fingerprint"
	"github.com/rivergate/usbvault/pkg/load"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/queue"
	"github.com/rivergate/usbvault/pkg/workpool"
)

type stubDevices struct {
	mu      sync.Mutex
	present map[string]bool
	labels  map[string]string
}

func newStubDevices() *stubDevices {
	return &stubDevices{present: map[string]bool{}, labels: map[string]string{}}
}

func (s *stubDevices) set(serial, label string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present[serial] = present
	s.labels[serial] = label
}

func (s *stubDevices) IsPresent(serial string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present[serial]
}

func (s *stubDevices) Label(serial string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, ok := s.labels[serial]
	return label, ok
}

func newTestScheduler(t *testing.T, devices DeviceStatus, workPath string) (*Scheduler, *queue.Queue, *bus.Bus) {
	t.Helper()
	pool := workpool.New(2)
	t.Cleanup(pool.Terminate)

	b := bus.New(pool, logging.RootLogger)
	q := queue.New()
	idx := fingerprint.New(filepath.Join(workPath, "index"), b, logging.RootLogger)

	scoreLow := func() load.Score { return load.Score{Value: 0, Level: load.LevelLow} }
	s := New(q, pool, idx, devices, scoreLow, workPath, b, logging.RootLogger)
	return s, q, b
}

func TestSchedulerCopiesFileAndEmitsSuccess(t *testing.T) {
	srcDir := t.TempDir()
	workPath := t.TempDir()

	srcPath := filepath.Join(srcDir, "photo.jpg")
	content := []byte("image bytes go here")
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	devices := newStubDevices()
	devices.set("SER1", "MyDrive", true)

	s, q, b := newTestScheduler(t, devices, workPath)

	var mu sync.Mutex
	var events []CopyCompletedEvent
	done := make(chan struct{})
	bus.Register(b, ClassCopyCompleted, func(e CopyCompletedEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
		close(done)
	})

	task := queue.NewTask("SER1", srcPath, "photo.jpg", int64(len(content)))
	q.Offer(task)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for COPY_COMPLETED event")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0].Result != ResultSuccess {
		t.Fatalf("expected one SUCCESS event, got %+v", events)
	}

	dst := filepath.Join(workPath, "MyDrive", "photo.jpg")
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("expected copied file at %s: %v", dst, err)
	}
	if string(got) != string(content) {
		t.Errorf("copied content mismatch: got %q", got)
	}
}

func TestSchedulerCancelsTaskForAbsentDevice(t *testing.T) {
	workPath := t.TempDir()
	devices := newStubDevices()
	devices.set("SER1", "MyDrive", false)

	s, q, b := newTestScheduler(t, devices, workPath)

	done := make(chan Result, 1)
	bus.Register(b, ClassCopyCompleted, func(e CopyCompletedEvent) {
		done <- e.Result
	})

	task := queue.NewTask("SER1", "/nonexistent/path", "file.bin", 10)
	q.Offer(task)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case result := <-done:
		if result != ResultCancel {
			t.Errorf("expected CANCEL for an absent device, got %v", result)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for COPY_COMPLETED event")
	}
}

func TestSchedulerDuplicateFileSucceedsWithoutSecondCopy(t *testing.T) {
	srcDir := t.TempDir()
	workPath := t.TempDir()

	content := []byte("duplicate content")
	srcA := filepath.Join(srcDir, "a.bin")
	srcB := filepath.Join(srcDir, "b.bin")
	if err := os.WriteFile(srcA, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(srcB, content, 0o644); err != nil {
		t.Fatal(err)
	}

	devices := newStubDevices()
	devices.set("SER1", "MyDrive", true)
	s, q, b := newTestScheduler(t, devices, workPath)

	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 2)
	bus.Register(b, ClassCopyCompleted, func(e CopyCompletedEvent) {
		mu.Lock()
		count++
		mu.Unlock()
		done <- struct{}{}
	})

	q.Offer(queue.NewTask("SER1", srcA, "a.bin", int64(len(content))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	<-done

	q.Offer(queue.NewTask("SER1", srcB, "b.bin", int64(len(content))))
	<-done

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Fatalf("expected 2 terminal events, got %d", count)
	}
	if _, err := os.Stat(filepath.Join(workPath, "MyDrive", "b.bin")); !os.IsNotExist(err) {
		t.Error("expected the duplicate's destination file not to be created")
	}
}
