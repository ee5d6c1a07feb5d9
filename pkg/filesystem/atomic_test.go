package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rivergate/usbvault/pkg/logging"
)

func TestWriteFileAtomicNonExistentDirectory(t *testing.T) {
	if WriteFileAtomic("/does/not/exist", []byte{}, 0600, logging.RootLogger) == nil {
		t.Error("atomic file write did not fail for non-existent path")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "file")
	contents := []byte{0, 1, 2, 3, 4, 5, 6}

	if err := WriteFileAtomic(target, contents, 0600, logging.RootLogger); err != nil {
		t.Fatal("atomic file write failed:", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal("unable to read back file:", err)
	}
	if !bytes.Equal(data, contents) {
		t.Error("file contents did not match expected")
	}
}
