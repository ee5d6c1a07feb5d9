// Package device implements the device manager: periodic volume
// enumeration, device identity and state tracking, ghost recall from
// persisted known-serials, and the DEVICE_* event surface.
package device

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// State is a device's position in its lifecycle state machine: OFFLINE
// (no known root, or root vanished) -> PRESENT (freshly seen or merged)
// -> IDLE / SCANNING (oscillating while present) -> OFFLINE again. There
// is no terminal state; a device may cycle indefinitely.
type State uint8

const (
	StateOffline State = iota
	StatePresent
	StateIdle
	StateScanning
)

// String renders a State for logging and event payloads.
func (s State) String() string {
	switch s {
	case StateOffline:
		return "OFFLINE"
	case StatePresent:
		return "PRESENT"
	case StateIdle:
		return "IDLE"
	case StateScanning:
		return "SCANNING"
	default:
		return "UNKNOWN"
	}
}

// Device is a tracked USB volume. Its identity is its Serial, which never
// changes for the lifetime of the record; Root is nil exactly when the
// device is a ghost (known but not currently mounted).
type Device struct {
	Serial   string
	Root     *string
	Label    string
	State    State
	LastSeen time.Time

	changed bool
	prior   State
}

// normalizeLabel applies Unicode NFC normalization to a volume label so
// that labels compare and persist consistently regardless of the
// normalization form a filesystem driver happens to report.
func normalizeLabel(label string) string {
	return norm.NFC.String(label)
}

// newGhost constructs a device recalled from persisted known-serials: no
// root, OFFLINE, with whatever label was last recorded for it.
func newGhost(serial, label string) *Device {
	return &Device{
		Serial: serial,
		Label:  normalizeLabel(label),
		State:  StateOffline,
	}
}

// newReal constructs a device for a newly sighted volume.
func newReal(serial, root, label string) *Device {
	return &Device{
		Serial:   serial,
		Root:     &root,
		Label:    normalizeLabel(label),
		State:    StatePresent,
		LastSeen: time.Now(),
	}
}

// merge absorbs a newly seen root into a ghost device, transitioning it
// OFFLINE -> PRESENT. It is the caller's responsibility to have verified
// the device was a ghost (Root == nil) first.
func (d *Device) merge(root, label string) {
	d.Root = &root
	if label != "" {
		d.Label = normalizeLabel(label)
	}
	d.transitionTo(StatePresent)
	d.LastSeen = time.Now()
}

// transitionTo moves the device to a new state, setting the
// change-and-reset flag if the state actually differs from its current
// one. Reading the flag (via consumeChange) clears it, so a state change
// is observable exactly once, matching the spec's change-and-reset
// semantics for Device (generalized from state.Marker's plain boolean to
// additionally carry the old/new state pair so STATE_CHANGED can report
// both).
func (d *Device) transitionTo(next State) {
	if d.State == next {
		return
	}
	d.prior = d.State
	d.State = next
	d.changed = true
}

// consumeChange reports whether the device's state has changed since the
// last call, returning the transition pair and clearing the flag.
func (d *Device) consumeChange() (old, current State, changed bool) {
	if !d.changed {
		return d.State, d.State, false
	}
	old, current = d.prior, d.State
	d.changed = false
	return old, current, true
}

// goOffline marks the device OFFLINE, used when its root path vanishes.
func (d *Device) goOffline() {
	d.Root = nil
	d.transitionTo(StateOffline)
}
