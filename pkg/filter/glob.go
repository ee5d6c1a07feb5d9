package filter

import (
	"io/fs"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rivergate/usbvault/pkg/config"
)

// GlobExclude rejects any path matching one of the configured doublestar
// exclude patterns; a path matching no pattern (including when no
// patterns are configured) passes. It is meant to run after the suffix
// filter in the default chain, short-circuiting it.
var GlobExclude Filter = FilterFunc(globExcludeTest)

func globExcludeTest(path string, _ fs.FileInfo) bool {
	for _, pattern := range config.PathFilterExcludeGlobs.Get() {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return false
		}
	}
	return true
}
