package load

import (
	"sync"
	"time"
)

// Throughput tracks aggregate copy throughput over a trailing window,
// feeding the load evaluator's copy-speed component. It is safe for
// concurrent use.
type Throughput struct {
	mu      sync.Mutex
	window  time.Duration
	samples []throughputSample
	now     func() time.Time
}

type throughputSample struct {
	at    time.Time
	bytes int64
}

// NewThroughput constructs a Throughput tracker retaining samples for
// window. A non-positive window is treated as one second.
func NewThroughput(window time.Duration) *Throughput {
	if window <= 0 {
		window = time.Second
	}
	return &Throughput{window: window, now: time.Now}
}

// Record registers n bytes copied at the current time.
func (t *Throughput) Record(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, throughputSample{at: t.now(), bytes: n})
	t.prune()
}

// BytesPerSecond returns the aggregate throughput averaged over the
// trailing window. It returns 0 once the window has no samples left.
func (t *Throughput) BytesPerSecond() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune()

	var total int64
	for _, s := range t.samples {
		total += s.bytes
	}
	if total == 0 {
		return 0
	}
	return float64(total) / t.window.Seconds()
}

// prune drops samples older than window. Must be called with mu held.
func (t *Throughput) prune() {
	cutoff := t.now().Add(-t.window)
	i := 0
	for i < len(t.samples) && t.samples[i].at.Before(cutoff) {
		i++
	}
	t.samples = t.samples[i:]
}
