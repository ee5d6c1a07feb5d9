package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/state"
)

// indexFileName is the name of the file, within the fingerprint index
// directory of the data directory, that holds the persisted set.
const indexFileName = "fingerprints"

// Index is a concurrent set of fingerprints backing duplicate detection. It
// tracks whether it has unsaved changes via a resettable dirty flag
// (state.Marker, generalized here to allow clearing after a save so the
// same marker can be reused across the index's lifetime) and persists
// itself periodically to a single file.
type Index struct {
	mu     sync.RWMutex
	set    map[Fingerprint]struct{}
	dirty  state.Marker
	path   string
	bus    *bus.Bus
	logger *logging.Logger
}

// New constructs an empty index that will persist to path. Callers
// normally derive path from filesystem.DataSubdirectory(true,
// filesystem.IndexDirectoryName, indexFileName); it is taken as a
// parameter here so tests can point it at a temporary file.
func New(path string, eventBus *bus.Bus, logger *logging.Logger) *Index {
	return &Index{
		set:    make(map[Fingerprint]struct{}),
		path:   path,
		bus:    eventBus,
		logger: logger,
	}
}

// DefaultPath computes the conventional on-disk path for the fingerprint
// index within the given data directory root.
func DefaultPath(dataDirectory string) string {
	return filepath.Join(dataDirectory, indexFileName)
}

// Load reads the index's persisted file, if any, populating the in-memory
// set. A missing file is not an error -- the index simply starts empty, as
// it would on first run. A corrupt record aborts the load and clears
// whatever had been read so far, per the index's failure semantics; a
// torn trailing record (truncation) is tolerated and the entries read
// before it are kept.
func (idx *Index) Load() error {
	fingerprints, err := Load(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		idx.mu.Lock()
		idx.set = make(map[Fingerprint]struct{})
		idx.mu.Unlock()
		return err
	}

	idx.mu.Lock()
	for _, fp := range fingerprints {
		idx.set[fp] = struct{}{}
	}
	count := len(idx.set)
	idx.mu.Unlock()

	if idx.bus != nil {
		idx.bus.Dispatch(NewIndexLoadedEvent(count))
	}
	return nil
}

// Contains reports whether fp has already been recorded in the index.
func (idx *Index) Contains(fp Fingerprint) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.set[fp]
	return ok
}

// Add records fp in the index, marking it dirty if fp was not already
// present. It returns whether fp was new.
func (idx *Index) Add(fp Fingerprint) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.set[fp]; ok {
		return false
	}
	idx.set[fp] = struct{}{}
	idx.dirty.Mark()
	return true
}

// AddFile records fp (the fingerprint of the file at path, size bytes) in
// the index and, if fp was new, emits a FILE_INDEXED event carrying the
// index's new size.
func (idx *Index) AddFile(fp Fingerprint, path string, size int64) bool {
	isNew := idx.Add(fp)
	if isNew && idx.bus != nil {
		idx.mu.RLock()
		total := len(idx.set)
		idx.mu.RUnlock()
		idx.bus.Dispatch(NewFileIndexedEvent(fp, path, size, total))
	}
	return isNew
}

// CheckDuplicate reports whether fp is already present in the index,
// emitting a DUPLICATE_DETECTED event when it is. The count reported with
// the event is always 1: the index is a set, not a multiset, so it does
// not track how many times a fingerprint has been seen beyond the first.
func (idx *Index) CheckDuplicate(path string, fp Fingerprint) bool {
	duplicate := idx.Contains(fp)
	if duplicate && idx.bus != nil {
		idx.bus.Dispatch(NewDuplicateDetectedEvent(fp, path, 1))
	}
	return duplicate
}

// Len returns the number of fingerprints currently in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.set)
}

// saveIfDirty persists the index if it has unsaved changes, clearing the
// dirty flag only on success. A failed save is logged and leaves the
// index dirty so that the next tick retries it.
func (idx *Index) saveIfDirty() {
	if !idx.dirty.Marked() {
		return
	}
	if err := idx.Save(idx.path, idx.logger); err != nil {
		idx.logger.Warnf("Unable to save fingerprint index: %s", err.Error())
		return
	}
	idx.dirty.Unmark()

	if idx.bus != nil {
		idx.bus.Dispatch(NewIndexSavedEvent(idx.Len()))
	}
}

// Run drives the index's periodic persistence: it waits
// save_initial_delay_s after construction, then saves if dirty every
// save_delay_s thereafter, until ctx is cancelled. It performs a final
// best-effort save on cancellation so that a clean shutdown doesn't lose
// the last tick's worth of additions.
func (idx *Index) Run(ctx context.Context) {
	initialDelay := time.Duration(config.IndexSaveInitialDelaySeconds.Get()) * time.Second
	interval := time.Duration(config.IndexSaveDelaySeconds.Get()) * time.Second

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			idx.saveIfDirty()
			return
		case <-timer.C:
			idx.saveIfDirty()
			timer.Reset(interval)
		}
	}
}
