package recycler

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rivergate/usbvault/pkg/scheduler"
)

// sweepEmptyFolders removes directories under root that hold no entries
// at all, per spec §4.10(a): a single pass takes one snapshot of the
// tree's directory contents, then deletes every directory that was empty
// in that snapshot, deepest first. A directory whose only children are
// themselves-empty subdirectories is NOT emptied by the same pass -- it
// had entries when the snapshot was taken, even though those entries are
// about to be removed -- so it becomes eligible only on a later tick.
func sweepEmptyFolders(root string) ([]string, error) {
	type candidate struct {
		path  string
		depth int
	}
	var candidates []candidate

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal to the sweep
		}
		if path == root || !entry.IsDir() {
			return nil
		}
		if entry.Name() == scheduler.StagingDirName {
			return fs.SkipDir
		}

		children, rerr := os.ReadDir(path)
		if rerr != nil {
			return nil
		}
		if len(children) == 0 {
			rel, _ := filepath.Rel(root, path)
			depth := strings.Count(rel, string(filepath.Separator))
			candidates = append(candidates, candidate{path: path, depth: depth})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].depth > candidates[j].depth
	})

	var deleted []string
	for _, c := range candidates {
		if err := os.Remove(c.path); err != nil {
			if os.IsNotExist(err) {
				continue // already gone -- workers touch overlapping subtrees, per spec §5
			}
			continue
		}
		deleted = append(deleted, c.path)
	}
	return deleted, nil
}
