// Package queue implements the priority task queue that sits between
// file discovery and the task scheduler: tasks are ordered by priority
// descending, then by enqueue time ascending among equal priorities.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single copy candidate awaiting scheduling.
type Task struct {
	// ID uniquely identifies this task across its lifetime -- discovery,
	// queueing, admission, and the terminal CopyCompletedEvent -- so log
	// lines and event payloads can be correlated by something sturdier
	// than a path, which can recur if a file is deleted and a new one
	// written in its place before the task is scheduled.
	ID         uuid.UUID
	Serial     string
	Path       string
	RelPath    string
	IsDir      bool
	Size       int64
	SizeKnown  bool
	Priority   int
	EnqueuedAt time.Time

	seq   uint64
	index int
}

// NewTask constructs a task for a regular file whose size is already
// known (the common case: the file discoverer stats every path it
// reports, so the size travels with it instead of being re-derived).
// relPath is the path relative to the device root, preserved under the
// destination tree.
func NewTask(serial, path, relPath string, size int64) *Task {
	return &Task{
		ID:        uuid.New(),
		Serial:    serial,
		Path:      path,
		RelPath:   relPath,
		Size:      size,
		SizeKnown: true,
		Priority:  priorityFor(path, false, size, true),
	}
}

// NewDirTask constructs a task for a directory (e.g. an empty directory
// structure that must be recreated at the destination); directories
// always receive the fixed directory bump rather than a size-based
// adjustment.
func NewDirTask(serial, path string) *Task {
	return &Task{
		ID:       uuid.New(),
		Serial:   serial,
		Path:     path,
		IsDir:    true,
		Priority: priorityFor(path, true, 0, false),
	}
}

// NewTaskStat constructs a task for a path whose size is not yet known,
// performing a best-effort, bounded stat to inform the size-based
// priority adjustment. If the stat does not complete within
// path_filter_stat_timeout_ms, the task is enqueued with no size-based
// adjustment rather than blocking the caller.
func NewTaskStat(serial, path string) *Task {
	size, ok := statSizeWithTimeout(path)
	return &Task{
		ID:        uuid.New(),
		Serial:    serial,
		Path:      path,
		Size:      size,
		SizeKnown: ok,
		Priority:  priorityFor(path, false, size, ok),
	}
}
