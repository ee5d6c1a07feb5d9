package device

import (
	"context"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/logging"
)

// Manager tracks every known device (present or ghost) under a single
// monitor, as spec §4.5 requires: all reads and writes of the device set
// happen under one mutex, and enumeration inside that monitor uses
// snapshot iteration so that event dispatch (which may re-enter the
// manager indirectly via a listener) never deadlocks against it.
type Manager struct {
	mu      sync.Mutex
	devices map[string]*Device

	serialsPath string
	enumerate   VolumeEnumerator
	serialOf    SerialQuery
	labelOf     LabelQuery

	bus    *bus.Bus
	logger *logging.Logger
}

// New constructs a Manager. serialsPath is where the known-serials list
// is persisted; enumerate/serialOf/labelOf are the manager's external
// collaborators (spec §6) -- callers typically supply DefaultVolumeEnumerator,
// DefaultSerialQuery, and DefaultLabelQuery, or their own platform-specific
// equivalents.
func New(serialsPath string, enumerate VolumeEnumerator, serialOf SerialQuery, labelOf LabelQuery, eventBus *bus.Bus, logger *logging.Logger) *Manager {
	return &Manager{
		devices:     make(map[string]*Device),
		serialsPath: serialsPath,
		enumerate:   enumerate,
		serialOf:    serialOf,
		labelOf:     labelOf,
		bus:         eventBus,
		logger:      logger,
	}
}

// Load populates the manager's device set with ghosts recalled from the
// known-serials file. It must be called before Run.
func (m *Manager) Load() error {
	records, err := loadKnownSerials(m.serialsPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.devices[r.serial] = newGhost(r.serial, r.label)
	}
	return nil
}

// Snapshot returns a point-in-time copy of every tracked device's
// observable fields.
func (m *Manager) Snapshot() []Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, *d)
	}
	return out
}

// IsPresent reports whether serial is currently tracked in any of the
// present-family states (PRESENT, IDLE, or SCANNING) rather than OFFLINE.
// The scheduler uses this to decide whether a dequeued task should be
// cancelled because its device went offline while it was waiting in the
// queue.
func (m *Manager) IsPresent(serial string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[serial]
	return ok && d.State != StateOffline
}

// Label returns the normalized label currently recorded for serial, and
// whether serial is tracked at all.
func (m *Manager) Label(serial string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[serial]
	if !ok {
		return "", false
	}
	return d.Label, true
}

// BeginScan transitions serial from IDLE to SCANNING, per spec §4.5's
// IDLE <-> SCANNING oscillation while a device is present. The discoverer
// calls this around an active walk or watch-dispatch burst; a serial that
// is untracked or already OFFLINE is left alone, since a device that went
// offline mid-cycle has already reported its departure.
func (m *Manager) BeginScan(serial string) {
	m.transitionPresent(serial, StateScanning)
}

// EndScan transitions serial from SCANNING back to IDLE, the resting state
// between discovery activity.
func (m *Manager) EndScan(serial string) {
	m.transitionPresent(serial, StateIdle)
}

// transitionPresent moves a tracked, non-offline device to next and
// dispatches the resulting StateChangedEvent, mirroring the
// lock-then-dispatch-after-unlock pattern reconcileAbsent uses for its own
// per-tick transitions.
func (m *Manager) transitionPresent(serial string, next State) {
	m.mu.Lock()
	d, ok := m.devices[serial]
	if !ok || d.State == StateOffline {
		m.mu.Unlock()
		return
	}
	d.transitionTo(next)
	old, current, changed := d.consumeChange()
	m.mu.Unlock()

	if changed && m.bus != nil {
		m.bus.Dispatch(newStateChangedEvent(d, old, current))
	}
}

// Run drives the manager's periodic enumeration tick until ctx is
// cancelled, per spec §4.5: every delay_s, first after initial_delay_s.
func (m *Manager) Run(ctx context.Context) {
	initialDelay := time.Duration(config.DevicePollInitialDelaySeconds.Get()) * time.Second
	interval := time.Duration(config.DevicePollDelaySeconds.Get()) * time.Second

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.tick()
			timer.Reset(interval)
		}
	}
}

// tick enumerates root volumes once and reconciles the tracked device
// set against them, per spec §4.5's two-step algorithm.
func (m *Manager) tick() {
	roots, err := m.enumerate()
	if err != nil {
		m.logger.Warnf("Unable to enumerate volumes: %s", err.Error())
		return
	}

	present := make(map[string]bool, len(roots))
	for _, root := range roots {
		serial, err := m.serialOf(root)
		if err != nil || serial == "" {
			continue
		}
		if config.IsSerialBlacklisted(serial) {
			continue
		}
		present[serial] = true
		m.observeRoot(serial, root)
	}

	m.reconcileAbsent(present)
	m.persist()
}

// observeRoot reconciles a single currently mounted root against the
// tracked device set: merging into an existing ghost, creating a new
// device, or just refreshing LastSeen for an already-present one.
func (m *Manager) observeRoot(serial, root string) {
	label, _ := m.labelOf(root)

	m.mu.Lock()
	d, tracked := m.devices[serial]
	var event bus.Event
	switch {
	case !tracked:
		d = newReal(serial, root, label)
		m.devices[serial] = d
		event = newNewJoinedEvent(d)
	case d.Root == nil:
		d.merge(root, label)
		event = newInsertedEvent(d)
	default:
		d.LastSeen = time.Now()
		if d.State == StatePresent {
			d.transitionTo(StateIdle)
		}
	}
	m.mu.Unlock()

	if event != nil && m.bus != nil {
		m.bus.Dispatch(event)
	}
}

// reconcileAbsent transitions every tracked device not present in this
// tick's enumeration to OFFLINE, and reports any other pending state
// change accumulated since the last tick.
func (m *Manager) reconcileAbsent(present map[string]bool) {
	m.mu.Lock()
	snapshotDevices := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		snapshotDevices = append(snapshotDevices, d)
	}
	m.mu.Unlock()

	for _, d := range snapshotDevices {
		m.mu.Lock()
		if !present[d.Serial] && d.State != StateOffline {
			d.goOffline()
		}
		old, current, changed := d.consumeChange()
		m.mu.Unlock()

		if !changed || m.bus == nil {
			continue
		}
		if current == StateOffline {
			m.bus.Dispatch(newRemovedEvent(d))
		} else {
			m.bus.Dispatch(newStateChangedEvent(d, old, current))
		}
	}
}

// persist rewrites the known-serials file from the current device set.
// Per spec it is rewritten on every additive or removal mutation; since a
// tick is the only place mutations happen, rewriting once per tick after
// reconciliation satisfies that without risking a partial rewrite mid-tick.
func (m *Manager) persist() {
	m.mu.Lock()
	records := make([]knownSerialRecord, 0, len(m.devices))
	for serial, d := range m.devices {
		records = append(records, knownSerialRecord{serial: serial, label: d.Label})
	}
	m.mu.Unlock()

	if err := saveKnownSerials(m.serialsPath, records, m.logger); err != nil {
		m.logger.Warnf("Unable to persist known serials: %s", err.Error())
	}
}
