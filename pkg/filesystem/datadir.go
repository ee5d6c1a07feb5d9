package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// DataDirectoryName is the name of the usbvault data directory, created
	// inside the current user's home directory.
	DataDirectoryName = ".usbvault"

	// IndexDirectoryName is the subdirectory of the data directory in which
	// the fingerprint index is persisted.
	IndexDirectoryName = "index"

	// DevicesDirectoryName is the subdirectory of the data directory in
	// which known-device records are persisted.
	DevicesDirectoryName = "devices"

	// ConfigDirectoryName is the subdirectory of the data directory in
	// which configuration exports are written and read.
	ConfigDirectoryName = "config"
)

// DataDirectory returns the path to the usbvault data directory, derived
// from HomeDirectory (see home.go). It is computed on each call, rather
// than cached in a package-level variable set from init, so that it never
// depends on cross-file init ordering against HomeDirectory's own init.
func DataDirectory() string {
	return filepath.Join(HomeDirectory, DataDirectoryName)
}

// DataSubdirectory computes (and optionally creates) a subdirectory inside
// the usbvault data directory. Unlike the teacher's equivalent, this
// package does not also provide a cross-process lock file: spec.md's
// non-goals exclude multi-process coordination, so there is only ever one
// writer to the data directory.
func DataSubdirectory(create bool, pathComponents ...string) (string, error) {
	base := DataDirectory()
	result := filepath.Join(base, filepath.Join(pathComponents...))

	if create {
		if err := os.MkdirAll(result, 0700); err != nil {
			return "", errors.Wrap(err, "unable to create subpath")
		} else if err := MarkHidden(base); err != nil {
			return "", errors.Wrap(err, "unable to hide data directory")
		}
	}

	return result, nil
}
