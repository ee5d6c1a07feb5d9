package filesystem

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MarkHidden ensures that a path is hidden. POSIX platforms have no hidden
// file attribute; they only hide dot-prefixed paths, so this just verifies
// that the path begins with a dot.
func MarkHidden(path string) error {
	if strings.IndexByte(filepath.Base(path), '.') != 0 {
		return errors.New("only dot-prefixed paths are hidden on POSIX")
	}
	return nil
}
