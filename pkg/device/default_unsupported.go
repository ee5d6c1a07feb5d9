// +build !linux

package device

import "errors"

var errUnsupportedPlatform = errors.New("default volume enumeration unsupported on this platform")

// DefaultVolumeEnumerator is unsupported outside Linux; supply a
// platform-specific VolumeEnumerator instead.
func DefaultVolumeEnumerator() ([]string, error) {
	return nil, errUnsupportedPlatform
}

// DefaultSerialQuery is unsupported outside Linux; supply a
// platform-specific SerialQuery instead.
func DefaultSerialQuery(rootPath string) (string, error) {
	return "", errUnsupportedPlatform
}

// DefaultLabelQuery is unsupported outside Linux; supply a
// platform-specific LabelQuery instead.
func DefaultLabelQuery(rootPath string) (string, error) {
	return "", errUnsupportedPlatform
}
