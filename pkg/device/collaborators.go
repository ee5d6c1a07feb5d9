package device

// VolumeEnumerator lists the currently mounted candidate root paths for
// removable volumes. It is one of the manager's external collaborators
// (spec §6): platform-specific volume discovery is out of scope for this
// package, which depends only on the narrow contract below.
type VolumeEnumerator func() ([]string, error)

// SerialQuery is a pure function over a mount point returning its
// hardware serial string, per spec §6's `hardware_serial(rootPath) ->
// string` contract. The platform-specific query itself is an external
// collaborator, not something this package implements.
type SerialQuery func(rootPath string) (string, error)

// LabelQuery returns a mount point's volume label, used to seed a newly
// sighted device's Label. Unlike SerialQuery this isn't named in spec §6
// explicitly, but it is the same shape of narrow, swappable probe.
type LabelQuery func(rootPath string) (string, error)
