package discover

import (
	"context"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/device"
	"github.com/rivergate/usbvault/pkg/logging"
)

// ScanNotifier toggles a device's IDLE/SCANNING state around discovery
// activity, satisfied by *pkg/device.Manager. It exists so tests can
// substitute a stub rather than constructing a full Manager.
type ScanNotifier interface {
	BeginScan(serial string)
	EndScan(serial string)
}

// Discoverer runs the per-device walk-then-watch cycle described above,
// starting a device's cycle when it first becomes reachable and tearing
// it down when the device goes offline. A cycle that ends -- whether by
// clean watcher shutdown, error, or pending-path overflow -- is
// automatically restarted after a backoff that depends on how it ended,
// unless the discoverer has been paused.
type Discoverer struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	pauseMu sync.Mutex
	paused  bool

	scans  ScanNotifier
	bus    *bus.Bus
	logger *logging.Logger
}

// New constructs a Discoverer. Subscribe must be called to begin
// reacting to device lifecycle events. scans receives a BeginScan/EndScan
// pair around every walk-then-watch cycle, driving the device manager's
// IDLE <-> SCANNING oscillation (spec §4.5); callers may pass nil to skip
// that notification (tests that don't care about device state).
func New(eventBus *bus.Bus, scans ScanNotifier, logger *logging.Logger) *Discoverer {
	return &Discoverer{
		cancels: make(map[string]context.CancelFunc),
		scans:   scans,
		bus:     eventBus,
		logger:  logger,
	}
}

// Subscribe registers the discoverer's listeners on its event bus. It is
// separate from New so that tests can drive start/stop directly without
// going through device events.
func (d *Discoverer) Subscribe() {
	bus.Register(d.bus, device.ClassNewJoined, func(e device.NewJoinedEvent) {
		d.onPresent(e.Device.Serial, e.Device.Root)
	})
	bus.Register(d.bus, device.ClassInserted, func(e device.InsertedEvent) {
		d.onPresent(e.Device.Serial, e.Device.Root)
	})
	bus.Register(d.bus, device.ClassRemoved, func(e device.RemovedEvent) {
		d.Stop(e.Device.Serial)
	})
}

func (d *Discoverer) onPresent(serial string, root *string) {
	if root == nil {
		return
	}
	d.Start(serial, *root)
}

// Start begins (or restarts) the walk-then-watch cycle for serial at
// root. A cycle already running for serial is cancelled first, so that a
// fresh start always supersedes any prior pending restart.
func (d *Discoverer) Start(serial, root string) {
	d.mu.Lock()
	if cancel, ok := d.cancels[serial]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancels[serial] = cancel
	d.mu.Unlock()

	go d.run(ctx, serial, root)
}

// Stop cancels serial's cycle, if one is running.
func (d *Discoverer) Stop(serial string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cancel, ok := d.cancels[serial]; ok {
		cancel()
		delete(d.cancels, serial)
	}
}

// Pause suppresses automatic restarts across all devices, per spec's
// storage-pause rule. Cycles already running are left to finish, but
// will not be restarted until Resume is called.
func (d *Discoverer) Pause() {
	d.pauseMu.Lock()
	d.paused = true
	d.pauseMu.Unlock()
}

// Resume re-enables automatic restarts.
func (d *Discoverer) Resume() {
	d.pauseMu.Lock()
	d.paused = false
	d.pauseMu.Unlock()
}

func (d *Discoverer) isPaused() bool {
	d.pauseMu.Lock()
	defer d.pauseMu.Unlock()
	return d.paused
}

// run drives serial's repeating walk-then-watch cycle until ctx is
// cancelled.
func (d *Discoverer) run(ctx context.Context, serial, root string) {
	initialDelay := time.Duration(config.InitialDelaySeconds.Get()) * time.Second
	select {
	case <-ctx.Done():
		return
	case <-time.After(initialDelay):
	}

	for {
		err := d.runCycle(ctx, serial, root)
		if ctx.Err() != nil {
			return
		}

		wait := time.Duration(config.SnifferWaitNormalMinutes.Get()) * time.Minute
		if err != nil {
			wait = time.Duration(config.SnifferWaitErrorMinutes.Get()) * time.Minute
			d.logger.Warnf("Discovery cycle for device %s ended with error: %s", serial, err.Error())
		}

		if !d.awaitRestart(ctx, wait) {
			return
		}
	}
}

// runCycle performs one full walk-then-watch cycle. The device is marked
// SCANNING for the bounded walk -- the active traversal -- and IDLE again
// once it settles into watching for filesystem notifications.
func (d *Discoverer) runCycle(ctx context.Context, serial, root string) error {
	if d.scans != nil {
		d.scans.BeginScan(serial)
	}
	err := walkDevice(ctx, serial, root, config.DiscoverMaxDepth.Get(), d.bus)
	if d.scans != nil {
		d.scans.EndScan(serial)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return watchDevice(ctx, serial, root, d.bus, d.scans)
}

// awaitRestart waits out the backoff, holding back if the discoverer is
// paused, and reports whether the caller should proceed with another
// cycle (false means ctx was cancelled while waiting).
func (d *Discoverer) awaitRestart(ctx context.Context, wait time.Duration) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for d.isPaused() {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return true
}
