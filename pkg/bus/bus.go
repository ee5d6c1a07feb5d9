package bus

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/workpool"
)

// Handle identifies a registered listener so that it can later be
// unregistered.
type Handle struct {
	class Class
	id    uint64
}

// listener wraps a caller's typed handler as an untyped callback over
// Event, plus a pointer identity used to detect duplicate registrations.
type listener struct {
	id   uint64
	ptr  uintptr
	call func(Event)
}

// Bus maps event classes to their registered listener lists and dispatches
// events to them synchronously or asynchronously. A Bus is safe for
// concurrent use.
type Bus struct {
	mu        sync.Mutex
	listeners map[Class][]*listener
	nextID    uint64
	pool      *workpool.Pool
	logger    *logging.Logger
}

// New creates a Bus whose asynchronous dispatch submits listener
// invocations to the given shared worker pool (see pkg/scheduler, which
// services the same pool with its copy workers) and logs listener failures
// through the given logger.
func New(pool *workpool.Pool, logger *logging.Logger) *Bus {
	return &Bus{
		listeners: make(map[Class][]*listener),
		pool:      pool,
		logger:    logger,
	}
}

// Register adds a typed listener for the given event class. Listeners are
// invoked in registration order. A second registration of the same
// function value for the same class is a no-op and returns the existing
// handle, per the bus's duplicate-registration rule. Identity is the
// function value itself, not its code: two closures created from the same
// literal are distinct listeners.
func Register[E Event](b *Bus, class Class, fn func(E)) Handle {
	ptr := *(*uintptr)(unsafe.Pointer(&fn))

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners[class] {
		if existing.ptr == ptr {
			return Handle{class: class, id: existing.id}
		}
	}

	id := atomic.AddUint64(&b.nextID, 1)
	wrapped := func(ev Event) {
		typed, ok := ev.(E)
		if !ok {
			return
		}
		fn(typed)
	}
	b.listeners[class] = append(b.listeners[class], &listener{id: id, ptr: ptr, call: wrapped})
	return Handle{class: class, id: id}
}

// Unregister removes a previously registered listener. Unregistering an
// unknown or already-removed handle is a no-op.
func (b *Bus) Unregister(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.listeners[h.class]
	for i, l := range list {
		if l.id == h.id {
			b.listeners[h.class] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// snapshot returns a copy of the listener list registered for class, safe
// to iterate without holding the bus lock.
func (b *Bus) snapshot(class Class) []*listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.listeners[class]
	out := make([]*listener, len(list))
	copy(out, list)
	return out
}

// invoke calls a listener, recovering from and logging a panic so that one
// failing listener never stops fan-out to the rest.
func (b *Bus) invoke(l *listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("listener for %s panicked: %v", event.Class(), r)
		}
	}()
	l.call(event)
}

// Dispatch invokes every listener registered for event's class, in
// registration order, on the calling goroutine. It returns once all
// listeners have run.
func (b *Bus) Dispatch(event Event) {
	for _, l := range b.snapshot(event.Class()) {
		b.invoke(l, event)
	}
}

// DispatchAsync submits each registered listener to the bus's shared
// worker pool and returns a channel that is closed once all of them have
// completed, successfully or not. If no listeners are registered, the
// returned channel is already closed.
func (b *Bus) DispatchAsync(event Event) <-chan struct{} {
	done := make(chan struct{})
	listeners := b.snapshot(event.Class())
	if len(listeners) == 0 {
		close(done)
		return done
	}

	var wg sync.WaitGroup
	wg.Add(len(listeners))
	for _, l := range listeners {
		l := l
		b.pool.Submit(func() {
			defer wg.Done()
			b.invoke(l, event)
		})
	}

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}
