// +build darwin linux

package filesystem

import (
	"github.com/pkg/errors"

	"golang.org/x/sys/unix"
)

// SpaceUsage reports a filesystem's available and total capacity, in bytes,
// as seen from the given path.
type SpaceUsage struct {
	// Available is the number of bytes free for use by unprivileged users.
	Available uint64
	// Total is the total capacity of the filesystem.
	Total uint64
}

// QuerySpaceUsage queries the free-space headroom of the filesystem
// containing path, via a statfs-style probe. The recycler uses this to
// decide whether reclamation is needed relative to the volume's total
// capacity, not just the work area's own content size.
func QuerySpaceUsage(path string) (SpaceUsage, error) {
	var metadata unix.Statfs_t
	if err := unix.Statfs(path, &metadata); err != nil {
		return SpaceUsage{}, errors.Wrap(err, "unable to query filesystem metadata")
	}
	blockSize := uint64(metadata.Bsize)
	return SpaceUsage{
		Available: metadata.Bavail * blockSize,
		Total:     metadata.Blocks * blockSize,
	}, nil
}
