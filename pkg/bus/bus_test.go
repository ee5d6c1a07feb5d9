package bus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/workpool"
)

type testEvent struct {
	Base
	payload string
}

func newTestEvent(payload string) testEvent {
	return testEvent{Base: NewBase("TEST_EVENT"), payload: payload}
}

func TestDispatchOrdersListenersByRegistration(t *testing.T) {
	b := New(workpool.New(2), logging.RootLogger)
	defer func() {}()

	var mu sync.Mutex
	var order []int

	Register(b, Class("TEST_EVENT"), func(e testEvent) {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	})
	Register(b, Class("TEST_EVENT"), func(e testEvent) {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	})

	b.Dispatch(newTestEvent("x"))

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected registration-order fan-out [1 2], got %v", order)
	}
}

func TestDuplicateRegistrationIsNoOp(t *testing.T) {
	b := New(workpool.New(2), logging.RootLogger)

	var calls int64
	handler := func(e testEvent) { atomic.AddInt64(&calls, 1) }

	h1 := Register(b, Class("TEST_EVENT"), handler)
	h2 := Register(b, Class("TEST_EVENT"), handler)
	if h1 != h2 {
		t.Fatalf("expected duplicate registration to return the same handle")
	}

	b.Dispatch(newTestEvent("x"))
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected the duplicate registration to fire once, got %d", got)
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	b := New(workpool.New(2), logging.RootLogger)

	var calls int64
	h := Register(b, Class("TEST_EVENT"), func(e testEvent) {
		atomic.AddInt64(&calls, 1)
	})
	b.Unregister(h)
	b.Dispatch(newTestEvent("x"))

	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Fatalf("expected no delivery after unregister, got %d calls", got)
	}
}

func TestPanickingListenerDoesNotStopFanOut(t *testing.T) {
	b := New(workpool.New(2), logging.RootLogger)

	var secondCalled int64
	Register(b, Class("TEST_EVENT"), func(e testEvent) {
		panic("boom")
	})
	Register(b, Class("TEST_EVENT"), func(e testEvent) {
		atomic.AddInt64(&secondCalled, 1)
	})

	b.Dispatch(newTestEvent("x"))

	if got := atomic.LoadInt64(&secondCalled); got != 1 {
		t.Fatalf("expected second listener to run despite first panicking, got %d", got)
	}
}

func TestDispatchAsyncWaitsForAllListeners(t *testing.T) {
	pool := workpool.New(4)
	defer pool.Terminate()
	b := New(pool, logging.RootLogger)

	var calls int64
	for i := 0; i < 5; i++ {
		Register(b, Class("TEST_EVENT"), func(e testEvent) {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&calls, 1)
		})
	}

	select {
	case <-b.DispatchAsync(newTestEvent("x")):
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for async dispatch to complete")
	}

	if got := atomic.LoadInt64(&calls); got != 5 {
		t.Fatalf("expected all 5 listeners to complete, got %d", got)
	}
}

func TestDispatchAsyncNoListenersClosesImmediately(t *testing.T) {
	pool := workpool.New(2)
	defer pool.Terminate()
	b := New(pool, logging.RootLogger)

	select {
	case <-b.DispatchAsync(newTestEvent("x")):
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected DispatchAsync to close immediately with no listeners")
	}
}

func TestResultBusDispatch(t *testing.T) {
	pool := workpool.New(2)
	defer pool.Terminate()

	rb := NewResultBus[testEvent, int](pool)
	rb.Register(func(e testEvent) int { return len(e.payload) })
	rb.Register(func(e testEvent) int { return len(e.payload) * 2 })

	results := rb.Dispatch(newTestEvent("abc"))
	if len(results) != 2 || results[0] != 3 || results[1] != 6 {
		t.Fatalf("expected [3 6], got %v", results)
	}
}

func TestResultBusDispatchAsync(t *testing.T) {
	pool := workpool.New(2)
	defer pool.Terminate()

	rb := NewResultBus[testEvent, int](pool)
	rb.Register(func(e testEvent) int { return 1 })
	rb.Register(func(e testEvent) int { return 2 })

	select {
	case results := <-rb.DispatchAsync(newTestEvent("x")):
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %v", results)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for async result dispatch")
	}
}
