package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rivergate/usbvault/pkg/logging"
)

func TestMoveFileSameDirectoryRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("payload"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst, logging.RootLogger); err != nil {
		t.Fatal("MoveFile failed:", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected destination contents: %v, %q", err, data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("expected source file to be gone after move")
	}
}

func TestCopyThenRemoveFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	if err := os.WriteFile(src, []byte("payload"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := copyThenRemove(src, dst, logging.RootLogger); err != nil {
		t.Fatal("copyThenRemove failed:", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected destination contents: %v, %q", err, data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("expected source file to be removed after copy fallback")
	}
}
