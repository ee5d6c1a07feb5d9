// Package discover implements the per-device file discoverer: a bounded
// initial walk followed by a debounced filesystem watch, each path run
// through the filter chain before being handed off as a copy candidate.
package discover

import (
	"github.com/rivergate/usbvault/pkg/bus"
)

// ClassFileDiscovered identifies the event emitted for every path that
// survives the filter chain, whether found during the initial walk or
// through the watch phase.
const ClassFileDiscovered bus.Class = "FILE_DISCOVERED"

// FileDiscoveredEvent reports a single eligible path found under a
// device root. RelPath is Path relative to the device root, which is
// what the scheduler preserves under the destination tree.
type FileDiscoveredEvent struct {
	bus.Base
	Serial  string
	Path    string
	RelPath string
	Size    int64
}

func newFileDiscoveredEvent(serial, path, relPath string, size int64) FileDiscoveredEvent {
	return FileDiscoveredEvent{
		Base:    bus.NewBase(ClassFileDiscovered),
		Serial:  serial,
		Path:    path,
		RelPath: relPath,
		Size:    size,
	}
}
