package fingerprint

import "github.com/rivergate/usbvault/pkg/bus"

// Event classes emitted by the fingerprint index. These are declared here
// rather than centrally in pkg/bus to avoid an import cycle: pkg/bus knows
// nothing about fingerprint.Fingerprint, and fingerprint imports pkg/bus
// only for the Class/Event/Base plumbing.
const (
	ClassFileIndexed       bus.Class = "FILE_INDEXED"
	ClassDuplicateDetected bus.Class = "DUPLICATE_DETECTED"
	ClassIndexLoaded       bus.Class = "INDEX_LOADED"
	ClassIndexSaved        bus.Class = "INDEX_SAVED"
)

// FileIndexedEvent is emitted when a newly seen fingerprint is added to the
// index via AddFile.
type FileIndexedEvent struct {
	bus.Base
	Fingerprint  Fingerprint
	Path         string
	Size         int64
	TotalIndexed int
}

// NewFileIndexedEvent constructs a FileIndexedEvent.
func NewFileIndexedEvent(fp Fingerprint, path string, size int64, totalIndexed int) FileIndexedEvent {
	return FileIndexedEvent{
		Base:         bus.NewBase(ClassFileIndexed),
		Fingerprint:  fp,
		Path:         path,
		Size:         size,
		TotalIndexed: totalIndexed,
	}
}

// DuplicateDetectedEvent is emitted by CheckDuplicate when a fingerprint is
// already present in the index.
type DuplicateDetectedEvent struct {
	bus.Base
	Fingerprint Fingerprint
	Path        string
	Count       int
}

// NewDuplicateDetectedEvent constructs a DuplicateDetectedEvent.
func NewDuplicateDetectedEvent(fp Fingerprint, path string, count int) DuplicateDetectedEvent {
	return DuplicateDetectedEvent{
		Base:        bus.NewBase(ClassDuplicateDetected),
		Fingerprint: fp,
		Path:        path,
		Count:       count,
	}
}

// IndexLoadedEvent is emitted by Load once it finishes reading the
// persisted file (successfully or with a tolerated partial read). It is
// not emitted when the file does not exist.
type IndexLoadedEvent struct {
	bus.Base
	Count int
}

// NewIndexLoadedEvent constructs an IndexLoadedEvent.
func NewIndexLoadedEvent(count int) IndexLoadedEvent {
	return IndexLoadedEvent{Base: bus.NewBase(ClassIndexLoaded), Count: count}
}

// IndexSavedEvent is emitted after each successful periodic save.
type IndexSavedEvent struct {
	bus.Base
	Count int
}

// NewIndexSavedEvent constructs an IndexSavedEvent.
func NewIndexSavedEvent(count int) IndexSavedEvent {
	return IndexSavedEvent{Base: bus.NewBase(ClassIndexSaved), Count: count}
}
