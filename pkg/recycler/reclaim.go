package recycler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/scheduler"
)

// fileRecord is a candidate for reclamation.
type fileRecord struct {
	path    string
	size    int64
	modTime time.Time
}

// scanFiles walks root, returning every regular file's size/mtime and the
// sum of their sizes. Files under the scheduler's staging subdirectory are
// excluded -- they're in-progress copies, not settled content.
func scanFiles(root string) ([]fileRecord, int64, error) {
	var files []fileRecord
	var total int64

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if entry.Name() == scheduler.StagingDirName {
				return fs.SkipDir
			}
			return nil
		}
		info, ierr := entry.Info()
		if ierr != nil {
			return nil
		}
		files = append(files, fileRecord{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// orderForReclamation sorts candidates per strategy, per spec §4.10(b):
// TIME_FIRST orders oldest-mtime first, ties broken by largest size
// first; SIZE_FIRST orders largest-size first, ties broken by oldest
// mtime first.
func orderForReclamation(files []fileRecord, strategy config.RecyclerStrategy) {
	switch strategy {
	case config.RecyclerStrategySizeFirst:
		sort.Slice(files, func(i, j int) bool {
			if files[i].size != files[j].size {
				return files[i].size > files[j].size
			}
			return files[i].modTime.Before(files[j].modTime)
		})
	default: // RecyclerStrategyTimeFirst
		sort.Slice(files, func(i, j int) bool {
			if !files[i].modTime.Equal(files[j].modTime) {
				return files[i].modTime.Before(files[j].modTime)
			}
			return files[i].size > files[j].size
		})
	}
}

// reclaim deletes files under root, oldest/largest-first per strategy,
// until usedBytes drops to threshold or eligible candidates are
// exhausted. Files younger than protectedAge are never touched. It
// returns the paths deleted, the total bytes reclaimed, and the bytes
// still in use afterward (so the caller can tell whether the target was
// reached without re-scanning).
func reclaim(root string, threshold int64, protectedAge time.Duration, strategy config.RecyclerStrategy, now time.Time) ([]string, int64, int64, error) {
	files, used, err := scanFiles(root)
	if err != nil {
		return nil, 0, 0, err
	}
	if used <= threshold {
		return nil, 0, used, nil
	}
	shortfall := used - threshold

	eligible := files[:0:0]
	for _, f := range files {
		if now.Sub(f.modTime) >= protectedAge {
			eligible = append(eligible, f)
		}
	}
	orderForReclamation(eligible, strategy)

	var deleted []string
	var reclaimed int64
	for _, f := range eligible {
		if reclaimed >= shortfall {
			break
		}
		if err := os.Remove(f.path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			continue
		}
		deleted = append(deleted, f.path)
		reclaimed += f.size
	}
	return deleted, reclaimed, used - reclaimed, nil
}
