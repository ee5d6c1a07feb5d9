package device

import (
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
)

const (
	ClassNewJoined    bus.Class = "DEVICE_NEW_JOINED"
	ClassInserted     bus.Class = "DEVICE_INSERTED"
	ClassRemoved      bus.Class = "DEVICE_REMOVED"
	ClassStateChanged bus.Class = "DEVICE_STATE_CHANGED"
)

// snapshot is an immutable copy of a Device's observable fields, taken
// under the manager's monitor at dispatch time so that event payloads
// never alias mutable state the manager continues to update concurrently.
type snapshot struct {
	Serial   string
	Root     *string
	Label    string
	State    State
	LastSeen time.Time
}

func snapshotOf(d *Device) snapshot {
	var root *string
	if d.Root != nil {
		r := *d.Root
		root = &r
	}
	return snapshot{Serial: d.Serial, Root: root, Label: d.Label, State: d.State, LastSeen: d.LastSeen}
}

// NewJoinedEvent is emitted the first time a device's serial is seen.
type NewJoinedEvent struct {
	bus.Base
	Device snapshot
}

func newNewJoinedEvent(d *Device) NewJoinedEvent {
	return NewJoinedEvent{Base: bus.NewBase(ClassNewJoined), Device: snapshotOf(d)}
}

// InsertedEvent is emitted when a previously known (ghost) device's
// volume reappears.
type InsertedEvent struct {
	bus.Base
	Device snapshot
}

func newInsertedEvent(d *Device) InsertedEvent {
	return InsertedEvent{Base: bus.NewBase(ClassInserted), Device: snapshotOf(d)}
}

// RemovedEvent is emitted when a tracked device transitions to OFFLINE.
type RemovedEvent struct {
	bus.Base
	Device snapshot
}

func newRemovedEvent(d *Device) RemovedEvent {
	return RemovedEvent{Base: bus.NewBase(ClassRemoved), Device: snapshotOf(d)}
}

// StateChangedEvent is emitted whenever a tracked device's state
// transitions, other than departure (which reports only as RemovedEvent).
// The OFFLINE->PRESENT merge of a device reports as InsertedEvent and,
// because the merge also sets the device's change flag, as a
// StateChangedEvent too.
type StateChangedEvent struct {
	bus.Base
	Device   snapshot
	OldState State
	NewState State
}

func newStateChangedEvent(d *Device, old, current State) StateChangedEvent {
	return StateChangedEvent{
		Base:     bus.NewBase(ClassStateChanged),
		Device:   snapshotOf(d),
		OldState: old,
		NewState: current,
	}
}
