package recycler

import (
	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
)

// ClassEmptyFoldersDeleted identifies a batch of directories removed by
// the empty-folder sweep.
const ClassEmptyFoldersDeleted bus.Class = "EMPTY_FOLDERS_DELETED"

// ClassFilesRecycled identifies a batch of files removed to restore
// storage headroom.
const ClassFilesRecycled bus.Class = "FILES_RECYCLED"

// EmptyFoldersDeletedEvent reports the directories removed in a single
// sweep pass. It is only dispatched when the batch is non-empty.
type EmptyFoldersDeletedEvent struct {
	bus.Base
	Paths []string
}

func newEmptyFoldersDeletedEvent(paths []string) EmptyFoldersDeletedEvent {
	return EmptyFoldersDeletedEvent{
		Base:  bus.NewBase(ClassEmptyFoldersDeleted),
		Paths: paths,
	}
}

// FilesRecycledEvent reports the files removed in a single reclamation
// pass.
type FilesRecycledEvent struct {
	bus.Base
	Paths          []string
	Strategy       config.RecyclerStrategy
	BytesReclaimed int64
}

func newFilesRecycledEvent(paths []string, strategy config.RecyclerStrategy, bytesReclaimed int64) FilesRecycledEvent {
	return FilesRecycledEvent{
		Base:           bus.NewBase(ClassFilesRecycled),
		Paths:          paths,
		Strategy:       strategy,
		BytesReclaimed: bytesReclaimed,
	}
}
