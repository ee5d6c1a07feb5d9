package buildinfo

import "fmt"

const (
	// VersionMajor is the current major version of usbvault.
	VersionMajor = 0
	// VersionMinor is the current minor version of usbvault.
	VersionMinor = 1
	// VersionPatch is the current patch version of usbvault.
	VersionPatch = 0
)

// Version is the full dotted version string, computed once at init.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
