// +build !darwin,!linux

package filesystem

import (
	"github.com/pkg/errors"
)

// SpaceUsage reports a filesystem's available and total capacity, in bytes.
type SpaceUsage struct {
	Available uint64
	Total     uint64
}

// QuerySpaceUsage is unsupported on this platform.
func QuerySpaceUsage(_ string) (SpaceUsage, error) {
	return SpaceUsage{}, errors.New("space usage queries unsupported on this platform")
}
