package scheduler

import (
	"github.com/google/uuid"

	"github.com/rivergate/usbvault/pkg/bus"
)

// ClassCopyCompleted identifies every terminal outcome of a copy task:
// SUCCESS, FAIL, or CANCEL.
const ClassCopyCompleted bus.Class = "COPY_COMPLETED"

// Result is a task's terminal disposition.
type Result int

const (
	ResultSuccess Result = iota
	ResultFail
	ResultCancel
)

// String renders a Result for logging and event payloads.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFail:
		return "FAIL"
	case ResultCancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// CopyCompletedEvent reports a task's terminal outcome. Size is the
// number of bytes copied on SUCCESS (0 for FAIL/CANCEL), feeding the
// load evaluator's aggregate copy-speed component. TaskID correlates
// this event back to the originating queue.Task.
type CopyCompletedEvent struct {
	bus.Base
	TaskID uuid.UUID
	Serial string
	Path   string
	Result Result
	Size   int64
	Error  string
}

func newCopyCompletedEvent(taskID uuid.UUID, serial, path string, result Result, size int64, err error) CopyCompletedEvent {
	ev := CopyCompletedEvent{
		Base:   bus.NewBase(ClassCopyCompleted),
		TaskID: taskID,
		Serial: serial,
		Path:   path,
		Result: result,
		Size:   size,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
