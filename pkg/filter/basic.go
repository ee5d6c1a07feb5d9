package filter

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivergate/usbvault/pkg/config"
)

// Basic is the default structural filter: it rejects non-regular files,
// symlinks (when configured to skip them), hidden files (when not
// configured to include them), files with no owner-read permission bit,
// files over the configured size cap, and -- when the age filter is
// enabled -- files older than now minus the configured threshold.
//
// info is expected to come from os.Lstat (not os.Stat), so that a
// symlink's own mode bits are visible rather than the mode of whatever it
// points to.
var Basic Filter = FilterFunc(basicTest)

func basicTest(path string, info fs.FileInfo) bool {
	mode := info.Mode()

	if mode&fs.ModeSymlink != 0 {
		if config.FileFilterSkipSymlinks.Get() {
			return false
		}
	} else if !mode.IsRegular() {
		return false
	}

	if mode.Perm()&0o400 == 0 {
		return false
	}

	if !config.FileFilterIncludeHidden.Get() && isHidden(path) {
		return false
	}

	if uint64(info.Size()) > uint64(config.FileFilterMaxSize.Get()) {
		return false
	}

	if config.FileFilterTimeEnabled.Get() {
		threshold := config.FileFilterTimeUnit.Get().Duration(config.FileFilterTimeValue.Get())
		cutoff := time.Now().Add(-time.Duration(threshold))
		if info.ModTime().Before(cutoff) {
			return false
		}
	}

	return true
}

// isHidden reports whether path's base name is dot-prefixed.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
