package discover

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/filter"
)

// walkDevice performs Phase A: a single bounded-depth traversal of root,
// dispatching FileDiscoveredEvent for every path the filter chain
// accepts. maxDepth of 0 means unlimited, matching DiscoverMaxDepth's
// documented zero value.
func walkDevice(ctx context.Context, serial, root string, maxDepth int64, b *bus.Bus) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if maxDepth > 0 && depth > int(maxDepth) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if !filter.Default.Test(rel, info) {
			return nil
		}

		b.Dispatch(newFileDiscoveredEvent(serial, path, rel, info.Size()))
		return nil
	})
}
