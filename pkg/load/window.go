package load

import "sync"

// Window is a fixed-size ring buffer of recent admission decisions,
// feeding the Offered/Rejected fields of Metrics. It is safe for
// concurrent use.
type Window struct {
	mu        sync.Mutex
	decisions []bool
	pos       int
	filled    bool
}

// NewWindow constructs a Window retaining the most recent size
// decisions. A size of 0 or less is treated as 1.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{decisions: make([]bool, size)}
}

// Record appends one admission decision (true if the task was rejected),
// evicting the oldest decision once the window is full.
func (w *Window) Record(rejected bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.decisions[w.pos] = rejected
	w.pos++
	if w.pos == len(w.decisions) {
		w.pos = 0
		w.filled = true
	}
}

// Counts returns the number of offered and rejected decisions currently
// held in the window.
func (w *Window) Counts() (offered, rejected int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.pos
	if w.filled {
		n = len(w.decisions)
	}
	for i := 0; i < n; i++ {
		if w.decisions[i] {
			rejected++
		}
	}
	return n, rejected
}
