package discover

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/filter"
	"github.com/rivergate/usbvault/pkg/state"
)

// errTooManyPendingPaths indicates that more distinct paths accumulated
// within one coalescing window than the configured cap, signalling that
// the watch is overwhelmed and should be torn down in favor of a fresh
// full re-walk.
var errTooManyPendingPaths = errors.New("discover: too many pending paths")

// watchDevice performs Phase B: it watches root for create/modify events,
// debouncing bursts of notifications within a coalescing window before
// re-running the filter chain on each affected path. It returns nil on a
// clean shutdown (ctx cancelled), or an error if the watch itself failed
// or was overwhelmed. scans, if non-nil, is marked SCANNING while a
// coalesced batch is being re-stated and dispatched, and IDLE the rest of
// the time the watch sits waiting on fsnotify.
func watchDevice(ctx context.Context, serial, root string, b *bus.Bus, scans ScanNotifier) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, root); err != nil {
		return err
	}

	window := time.Duration(config.DiscoverCoalesceWindowMS.Get()) * time.Millisecond
	maxPending := int(config.DiscoverMaxPendingPaths.Get())

	coalescer := state.NewCoalescer(window)
	defer coalescer.Terminate()

	var mu sync.Mutex
	pending := make(map[string]struct{})
	overflow := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return werr
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Lstat(ev.Name); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			mu.Lock()
			pending[ev.Name] = struct{}{}
			if len(pending) > maxPending {
				overflow = true
			}
			mu.Unlock()
			coalescer.Strobe()
		case <-coalescer.Events():
			mu.Lock()
			if overflow {
				mu.Unlock()
				return errTooManyPendingPaths
			}
			drained := pending
			pending = make(map[string]struct{})
			mu.Unlock()

			if scans != nil {
				scans.BeginScan(serial)
			}
			for path := range drained {
				dispatchIfEligible(serial, root, path, b)
			}
			if scans != nil {
				scans.EndScan(serial)
			}
		}
	}
}

// dispatchIfEligible re-stats a coalesced path and, if it still exists,
// is a regular file, and survives the filter chain, dispatches
// FileDiscoveredEvent for it.
func dispatchIfEligible(serial, root, path string, b *bus.Bus) {
	info, err := os.Lstat(path)
	if err != nil || info.IsDir() {
		return
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return
	}
	if !filter.Default.Test(rel, info) {
		return
	}
	b.Dispatch(newFileDiscoveredEvent(serial, path, rel, info.Size()))
}

// addWatchRecursive registers a watch on dir and every subdirectory
// beneath it, skipping anything unreadable rather than failing outright
// -- a best-effort policy, since a single unreadable directory shouldn't
// abort watching the rest of the tree.
func addWatchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		_ = watcher.Add(path)
		return nil
	})
}
