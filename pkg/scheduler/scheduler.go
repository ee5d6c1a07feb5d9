// Package scheduler implements the priority-admitted, load-aware task
// runner that drains pkg/queue and performs the actual device-to-storage
// file copies, reporting each task's terminal outcome on the event bus.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/fingerprint"
	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/load"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/must"
	"github.com/rivergate/usbvault/pkg/queue"
	"github.com/rivergate/usbvault/pkg/workpool"
)

// admitPollInterval is how often the admitter re-checks the concurrency
// cap and rate limiter while a task is waiting to be let through.
const admitPollInterval = 20 * time.Millisecond

// DeviceStatus is the scheduler's view of device presence, satisfied by
// *pkg/device.Manager. It exists so tests can substitute a stub rather
// than constructing a full Manager.
type DeviceStatus interface {
	IsPresent(serial string) bool
	Label(serial string) (string, bool)
}

// Scheduler drains a priority queue of ingestion tasks, admitting them
// onto a shared worker pool under a load-scaled concurrency cap and rate
// limit, and performs each task's copy-while-fingerprinting work.
type Scheduler struct {
	queue     *queue.Queue
	pool      *workpool.Pool
	index     *fingerprint.Index
	devices   DeviceStatus
	loadScore func() load.Score
	workPath  string
	bus       *bus.Bus
	logger    *logging.Logger

	bucket *tokenBucket
	active int64
	seq    uint64
	wg     sync.WaitGroup
}

// New constructs a Scheduler. loadScore is polled on every admission
// decision to pick the current concurrency cap and rate; workPath is the
// root under which copied files (and the staging directory) are created.
func New(q *queue.Queue, pool *workpool.Pool, index *fingerprint.Index, devices DeviceStatus, loadScore func() load.Score, workPath string, eventBus *bus.Bus, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		queue:     q,
		pool:      pool,
		index:     index,
		devices:   devices,
		loadScore: loadScore,
		workPath:  workPath,
		bus:       eventBus,
		logger:    logger,
		bucket:    newTokenBucket(float64(config.RateLimitTasksPerSecond.Get())),
	}
}

// Run drains the queue until it is closed or ctx is cancelled, admitting
// each task under the current load's concurrency cap and rate limit. On
// exit it waits up to shutdown_grace_s for in-flight copies to finish.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		task, err := s.queue.Take(ctx)
		if err != nil {
			s.awaitInFlight()
			return
		}
		if !s.admit(ctx, task) {
			s.awaitInFlight()
			return
		}
	}
}

// admit blocks task until the concurrency cap and rate limiter both
// permit it, then hands it to the worker pool (or runs it synchronously
// if the pool is saturated). It reports false if ctx was cancelled while
// waiting.
func (s *Scheduler) admit(ctx context.Context, task *queue.Task) bool {
	for {
		if ctx.Err() != nil {
			return false
		}

		score := s.loadScore()
		limit := concurrencyCap(score.Level, s.pool.Size())
		s.bucket.SetRate(effectiveRate(score.Level, float64(config.RateLimitTasksPerSecond.Get())))

		if atomic.LoadInt64(&s.active) >= int64(limit) || !s.bucket.Allow() {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(admitPollInterval):
				continue
			}
		}
		break
	}

	atomic.AddInt64(&s.active, 1)
	s.wg.Add(1)
	job := func() {
		defer s.wg.Done()
		defer atomic.AddInt64(&s.active, -1)
		s.runTask(ctx, task)
	}
	if !s.pool.TrySubmit(job) {
		job()
	}
	return true
}

// RunDirect executes task synchronously, bypassing admission entirely.
// Per spec §4.9's graceful-degradation rule, the caller uses this when
// the bounded priority queue rejects an Offer: rather than drop the
// task, it runs in the caller's own goroutine.
func (s *Scheduler) RunDirect(ctx context.Context, task *queue.Task) {
	s.runTask(ctx, task)
}

// ActiveWorkers reports the number of tasks currently admitted and
// running, for the load evaluator's worker-activity component.
func (s *Scheduler) ActiveWorkers() int {
	return int(atomic.LoadInt64(&s.active))
}

// awaitInFlight waits for every admitted-but-not-yet-finished task to
// complete, abandoning the wait after shutdown_grace_s so a stuck copy
// never blocks process exit indefinitely.
func (s *Scheduler) awaitInFlight() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	grace := time.Duration(config.ShutdownGraceSeconds.Get()) * time.Second
	select {
	case <-done:
	case <-time.After(grace):
		s.logger.Warnf("Shutdown grace period elapsed with copies still in flight")
	}
}

// runTask executes a single admitted task's copy, retrying transient
// read failures and reporting its terminal outcome on the bus.
func (s *Scheduler) runTask(ctx context.Context, task *queue.Task) {
	if !s.devices.IsPresent(task.Serial) {
		s.complete(task, ResultCancel, 0, nil)
		return
	}

	label, ok := s.devices.Label(task.Serial)
	if !ok {
		label = task.Serial
	}
	dst := destinationPath(s.workPath, label, task.RelPath)

	retryCount := int(config.RetryCount.Get())
	initialBackoff := time.Duration(config.RetryBackoffInitialMS.Get()) * time.Millisecond

	for attempt := 1; ; attempt++ {
		size, err := s.attemptCopy(task, dst)
		if err == nil {
			s.complete(task, ResultSuccess, size, nil)
			return
		}

		if !isRetryableReadError(err) || attempt > retryCount {
			s.complete(task, ResultFail, 0, err)
			return
		}
		if !s.devices.IsPresent(task.Serial) {
			s.complete(task, ResultCancel, 0, nil)
			return
		}

		select {
		case <-ctx.Done():
			s.complete(task, ResultCancel, 0, nil)
			return
		case <-time.After(backoffDelay(initialBackoff, attempt)):
		}
	}
}

// attemptCopy performs one copy attempt for task, returning the final
// byte size and nil error on success (including the already-copied and
// already-indexed-duplicate cases, both of which are successes per
// spec).
func (s *Scheduler) attemptCopy(task *queue.Task, dst string) (int64, error) {
	if task.SizeKnown && sameSize(dst, task.Size) {
		return task.Size, nil
	}

	stage := stagingPath(s.workPath, atomic.AddUint64(&s.seq, 1))
	result, err := copyAndFingerprint(task.Path, stage, s.logger)
	if err != nil {
		return 0, err
	}

	if s.index.CheckDuplicate(task.Path, result.fingerprint) {
		must.OSRemove(stage, s.logger)
		return result.size, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		must.OSRemove(stage, s.logger)
		return 0, err
	}
	if err := filesystem.MoveFile(stage, dst, s.logger); err != nil {
		must.OSRemove(stage, s.logger)
		return 0, err
	}

	s.index.AddFile(result.fingerprint, dst, result.size)
	return result.size, nil
}

// complete dispatches a task's terminal outcome on the bus.
func (s *Scheduler) complete(task *queue.Task, result Result, size int64, err error) {
	if s.bus == nil {
		return
	}
	s.bus.Dispatch(newCopyCompletedEvent(task.ID, task.Serial, task.Path, result, size, err))
}
