package filesystem

import (
	"fmt"
	"io"
	"os"

	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/must"
)

// MoveFile relocates src to dst, preferring a plain rename (cheap, atomic
// within a single filesystem) and falling back to a copy-then-remove when
// the rename fails because src and dst live on different devices -- which
// can happen here, unlike in WriteFileAtomic's single-directory case,
// since src is typically a staging-area temporary file while dst may
// fall under a per-device destination tree mounted from elsewhere.
func MoveFile(src, dst string, logger *logging.Logger) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if !isCrossDeviceError(err) {
		return fmt.Errorf("unable to rename file into place: %w", err)
	}

	if err := copyThenRemove(src, dst, logger); err != nil {
		return fmt.Errorf("unable to copy file across devices: %w", err)
	}
	return nil
}

// copyThenRemove is MoveFile's cross-device fallback.
func copyThenRemove(src, dst string, logger *logging.Logger) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer must.Close(source, logger)

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("unable to query source file metadata: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		must.Close(destination, logger)
		must.OSRemove(dst, logger)
		return fmt.Errorf("unable to copy file contents: %w", err)
	}
	if err := destination.Close(); err != nil {
		must.OSRemove(dst, logger)
		return fmt.Errorf("unable to close destination file: %w", err)
	}

	must.OSRemove(src, logger)
	return nil
}
