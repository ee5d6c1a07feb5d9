package bus

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/rivergate/usbvault/pkg/workpool"
)

// resultListener is ResultBus's typed counterpart to listener: it keeps the
// caller's result type intact instead of erasing it behind Event, so
// Dispatch and DispatchAsync never need a runtime type switch to recover R.
type resultListener[E Event, R any] struct {
	id  uint64
	ptr uintptr
	fn  func(E) R
}

// ResultBus is a single-event-type, result-collecting counterpart to Bus. It
// is kept as its own generic type, rather than folded into Bus's untyped
// Class-keyed registry, so that its listeners and the results returned by
// Dispatch and DispatchAsync stay statically typed end to end -- no reflection-based result
// matching.
type ResultBus[E Event, R any] struct {
	mu        sync.Mutex
	listeners []*resultListener[E, R]
	nextID    uint64
	pool      *workpool.Pool
}

// NewResultBus creates a ResultBus whose asynchronous dispatch submits
// listener invocations to the given shared worker pool.
func NewResultBus[E Event, R any](pool *workpool.Pool) *ResultBus[E, R] {
	return &ResultBus[E, R]{pool: pool}
}

// Register adds a result-returning listener. A second registration of the
// same function value is a no-op and returns the existing handle.
func (b *ResultBus[E, R]) Register(fn func(E) R) Handle {
	ptr := *(*uintptr)(unsafe.Pointer(&fn))

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners {
		if existing.ptr == ptr {
			return Handle{id: existing.id}
		}
	}

	id := atomic.AddUint64(&b.nextID, 1)
	b.listeners = append(b.listeners, &resultListener[E, R]{id: id, ptr: ptr, fn: fn})
	return Handle{id: id}
}

// Unregister removes a previously registered listener.
func (b *ResultBus[E, R]) Unregister(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == h.id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *ResultBus[E, R]) snapshot() []*resultListener[E, R] {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*resultListener[E, R], len(b.listeners))
	copy(out, b.listeners)
	return out
}

// Dispatch invokes every registered listener in registration order on the
// calling goroutine and returns their results in that same order.
func (b *ResultBus[E, R]) Dispatch(event E) []R {
	listeners := b.snapshot()
	results := make([]R, len(listeners))
	for i, l := range listeners {
		results[i] = l.fn(event)
	}
	return results
}

// DispatchAsync submits every registered listener to the shared worker pool
// and returns a channel carrying the collected results (in registration
// order) once all of them have completed.
func (b *ResultBus[E, R]) DispatchAsync(event E) <-chan []R {
	out := make(chan []R, 1)
	listeners := b.snapshot()
	if len(listeners) == 0 {
		out <- nil
		close(out)
		return out
	}

	results := make([]R, len(listeners))
	var wg sync.WaitGroup
	wg.Add(len(listeners))
	for i, l := range listeners {
		i, l := i, l
		b.pool.Submit(func() {
			defer wg.Done()
			results[i] = l.fn(event)
		})
	}

	go func() {
		wg.Wait()
		out <- results
		close(out)
	}()
	return out
}
