// +build linux

package device

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// candidateMountRoots are the directories under which auto-mounted
// removable volumes conventionally appear on Linux desktop distributions.
var candidateMountRoots = []string{"/media", "/run/media"}

// DefaultVolumeEnumerator is a best-effort VolumeEnumerator for
// Linux systems: it lists the immediate subdirectories of the
// conventional auto-mount roots (which are themselves usually one level
// deeper, under a per-user directory, so both depths are checked). It is
// provided as a working default, not as the platform-specific volume
// query spec §6 treats as an external collaborator -- callers with a
// more precise mechanism (e.g. polling udev) should supply their own
// VolumeEnumerator instead.
func DefaultVolumeEnumerator() ([]string, error) {
	var roots []string
	for _, base := range candidateMountRoots {
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(base, entry.Name())
			if !entry.IsDir() {
				continue
			}
			if isMountPoint(path) {
				roots = append(roots, path)
				continue
			}
			// Per-user auto-mount directory; descend one more level.
			nested, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, n := range nested {
				nestedPath := filepath.Join(path, n.Name())
				if n.IsDir() && isMountPoint(nestedPath) {
					roots = append(roots, nestedPath)
				}
			}
		}
	}
	return roots, nil
}

// isMountPoint reports whether path is a distinct mount point from its
// parent, by comparing device numbers -- the standard POSIX technique
// (equivalent to `mountpoint(1)`'s check).
func isMountPoint(path string) bool {
	var pathStat, parentStat unix.Stat_t
	if err := unix.Stat(path, &pathStat); err != nil {
		return false
	}
	if err := unix.Stat(filepath.Dir(path), &parentStat); err != nil {
		return false
	}
	return pathStat.Dev != parentStat.Dev
}

// DefaultSerialQuery derives a stable-enough identifier for a mount point
// from its filesystem ID (statfs's Fsid), surfaced as a hex string. This
// is not a true hardware serial number -- spec §6 explicitly carves the
// real platform-specific serial query out as an external collaborator --
// but it gives the manager something deterministic to key devices on
// when no more precise SerialQuery is supplied.
func DefaultSerialQuery(rootPath string) (string, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(rootPath, &stat); err != nil {
		return "", fmt.Errorf("unable to query filesystem id: %w", err)
	}
	return fmt.Sprintf("%x%x", stat.Fsid.Val[0], stat.Fsid.Val[1]), nil
}

// DefaultLabelQuery reads a volume's label from the conventional
// .VOLUME_LABEL marker file if present, else falls back to the mount
// point's base name.
func DefaultLabelQuery(rootPath string) (string, error) {
	if data, err := os.ReadFile(filepath.Join(rootPath, ".VOLUME_LABEL")); err == nil {
		if label := strings.TrimSpace(firstLine(data)); label != "" {
			return label, nil
		}
	}
	return filepath.Base(rootPath), nil
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}
