// Package service implements a uniform lifecycle contract, used by
// pkg/ingest to run the engine as a whole: a start/pause/resume/stop
// state machine wrapped around a periodic tick (spec §4.11).
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/state"
)

// TickFunc performs one unit of periodic work. An error return is
// treated as an uncaught exception: the service transitions to FAILED
// and no further ticks occur.
type TickFunc func(ctx context.Context) error

// Service drives a TickFunc on a fixed interval behind the
// STOPPED/STARTING/RUNNING/PAUSED/FAILED state machine described in
// spec §4.11.
type Service struct {
	name     string
	interval time.Duration
	tick     TickFunc
	cleanup  func()
	logger   *logging.Logger

	tracker   *state.Tracker
	stateLock *state.TrackingLock
	status    Status

	lifecycleLock sync.Mutex
	cancel        context.CancelFunc
	done          chan struct{}
}

// New constructs a Service in the STOPPED state. cleanup, if non-nil, is
// invoked once the worker goroutine has exited (or the stop deadline
// elapses), before the status transitions to STOPPED.
func New(name string, interval time.Duration, tick TickFunc, cleanup func(), logger *logging.Logger) *Service {
	tracker := state.NewTracker()
	return &Service{
		name:      name,
		interval:  interval,
		tick:      tick,
		cleanup:   cleanup,
		logger:    logger,
		tracker:   tracker,
		stateLock: state.NewTrackingLock(tracker),
		status:    StatusStopped,
	}
}

// Status returns the current lifecycle state.
func (s *Service) Status() Status {
	s.stateLock.Lock()
	defer s.stateLock.UnlockWithoutNotify()
	return s.status
}

// IsRunning reports whether the service is in the RUNNING state. Per
// spec §4.11, this is true only in RUNNING -- not STARTING, not PAUSED.
func (s *Service) IsRunning() bool {
	return s.Status() == StatusRunning
}

// WaitForStateChange blocks until the status differs from whatever was
// last observed at previousIndex, or ctx is cancelled. Callers track
// previousIndex across calls (0 forces an immediate read) instead of
// polling Status on a timer.
func (s *Service) WaitForStateChange(ctx context.Context, previousIndex uint64) (Status, uint64, error) {
	index, err := s.tracker.WaitForChange(ctx, previousIndex)
	return s.Status(), index, err
}

func (s *Service) setStatus(status Status) {
	s.stateLock.Lock()
	s.status = status
	s.stateLock.Unlock()
}

// Start transitions STOPPED -> STARTING -> RUNNING, running the first
// tick immediately and then on each interval thereafter. It is
// idempotent when already RUNNING or STARTING. It returns an error if
// called while PAUSED or FAILED -- Resume and a fresh Start (after Stop)
// are the respective ways out of those states.
func (s *Service) Start() error {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	switch s.Status() {
	case StatusRunning, StatusStarting:
		return nil
	case StatusPaused:
		return errPausedUseResume
	case StatusFailed:
		return errFailedUseStop
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.setStatus(StatusStarting)

	go s.run(workerCtx, s.done)

	return nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if !s.runTick(ctx, true) {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Status() == StatusPaused {
				continue
			}
			if !s.runTick(ctx, false) {
				return
			}
		}
	}
}

// runTick invokes the tick function once, handling the
// STARTING->RUNNING promotion on first success and the ->FAILED
// transition on error. It returns false if the worker loop should exit.
func (s *Service) runTick(ctx context.Context, first bool) bool {
	if err := s.tick(ctx); err != nil {
		s.logger.Errorf("%s: tick failed, transitioning to failed: %s", s.name, err.Error())
		s.setStatus(StatusFailed)
		return false
	}
	if first {
		s.setStatus(StatusRunning)
	}
	return true
}

// Pause transitions RUNNING -> PAUSED. Tick calls are skipped while
// paused; the worker goroutine keeps running so Resume is cheap.
func (s *Service) Pause() error {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	if s.Status() != StatusRunning {
		return errNotRunning
	}
	s.setStatus(StatusPaused)
	return nil
}

// Resume transitions PAUSED -> RUNNING.
func (s *Service) Resume() error {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()

	if s.Status() != StatusPaused {
		return errNotPaused
	}
	s.setStatus(StatusRunning)
	return nil
}

// Stop transitions any state -> STOPPED. It cancels the worker and
// waits for it to exit, bounded by ctx, then runs cleanup (if any)
// before marking the service stopped. Stop on an already-stopped
// service is a harmless no-op.
func (s *Service) Stop(ctx context.Context) error {
	s.lifecycleLock.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.lifecycleLock.Unlock()

	if cancel == nil {
		s.setStatus(StatusStopped)
		return nil
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warnf("%s: worker did not exit before stop deadline", s.name)
	}

	if s.cleanup != nil {
		s.cleanup()
	}
	s.setStatus(StatusStopped)
	return nil
}
