package scheduler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/fingerprint"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/must"
)

// StagingDirName is the subdirectory of the work path that holds
// in-progress copies before they're renamed into their final destination.
// Exported so the recycler can recognize and skip it during its sweeps.
const StagingDirName = ".staging"

// sanitizeLabel rewrites a device label for safe use as a single path
// component: path separators and ".." sequences collapse to "_" and an
// empty result falls
// back to "unlabeled" so a blank or root-only label never maps a
// destination path outside its intended subtree.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.ReplaceAll(label, string(filepath.Separator), "_")
	label = strings.ReplaceAll(label, "..", "_")
	if label == "" {
		return "unlabeled"
	}
	return label
}

// destinationPath computes the deterministic final location for a copied
// file: workPath/<sanitized label>/<relative path>, preserving the
// source's directory structure beneath the device's own subtree.
func destinationPath(workPath, label, relPath string) string {
	return filepath.Join(workPath, sanitizeLabel(label), filepath.FromSlash(relPath))
}

// stagingPath returns a fresh temporary file path under the work path's
// staging directory, distinct per call.
func stagingPath(workPath string, seq uint64) string {
	return filepath.Join(workPath, StagingDirName, fmt.Sprintf("%s%d", filesystem.TemporaryNamePrefix, seq))
}

// readFault and writeFault distinguish which side of a streaming copy
// failed, so the caller can apply spec's differing policies for a
// transient read error (retryable) versus a write error (not retried --
// likely a full or failing destination volume).
type readFault struct{ err error }
type writeFault struct{ err error }

func (f *readFault) Error() string  { return f.err.Error() }
func (f *readFault) Unwrap() error  { return f.err }
func (f *writeFault) Error() string { return f.err.Error() }
func (f *writeFault) Unwrap() error { return f.err }

// trackingTee copies from src to dst exactly like io.TeeReader, but
// tags any error that occurs on the write side with writeFault so the
// caller can tell it apart from a read-side failure without inspecting
// error text.
type trackingTee struct {
	src io.Reader
	dst io.Writer
}

func (t *trackingTee) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		if _, werr := t.dst.Write(p[:n]); werr != nil {
			return n, &writeFault{werr}
		}
	}
	if err != nil && err != io.EOF {
		return n, &readFault{err}
	}
	return n, err
}

// copyResult carries the outcome of a single streaming copy-and-fingerprint
// attempt.
type copyResult struct {
	fingerprint fingerprint.Fingerprint
	size        int64
}

// copyAndFingerprint streams src's full contents into a freshly created
// file at stagingPath while computing its fingerprint, per spec §4.9 step
// 2: hashing happens inline with the copy rather than as a second pass.
func copyAndFingerprint(srcPath, stagingPath string, logger *logging.Logger) (copyResult, error) {
	source, err := os.Open(srcPath)
	if err != nil {
		return copyResult{}, &readFault{errors.Wrap(err, "unable to open source file")}
	}
	defer must.Close(source, logger)

	if err := os.MkdirAll(filepath.Dir(stagingPath), 0o755); err != nil {
		return copyResult{}, errors.Wrap(err, "unable to create staging directory")
	}
	dest, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return copyResult{}, errors.Wrap(err, "unable to create staging file")
	}

	tee := &trackingTee{src: source, dst: dest}
	fp, hashErr := fingerprint.HashFile(tee)
	if hashErr != nil {
		must.Close(dest, logger)
		must.OSRemove(stagingPath, logger)
		return copyResult{}, hashErr
	}

	size, statErr := dest.Seek(0, io.SeekCurrent)
	if closeErr := dest.Close(); closeErr != nil && statErr == nil {
		statErr = closeErr
	}
	if statErr != nil {
		must.OSRemove(stagingPath, logger)
		return copyResult{}, errors.Wrap(statErr, "unable to finalize staging file")
	}

	return copyResult{fingerprint: fp, size: size}, nil
}

// sameSize reports whether a file already exists at path with exactly
// size bytes -- spec's target-exists-with-same-size short-circuit, which
// treats a previously completed copy (e.g. interrupted before its
// COPY_COMPLETED event but after the rename) as a success rather than an
// error or a redundant copy.
func sameSize(path string, size int64) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() == size
}

// isRetryableReadError reports whether err represents a transient failure
// on the read side of a copy, per spec's IOException-during-read retry
// policy.
func isRetryableReadError(err error) bool {
	var fault *readFault
	return errors.As(err, &fault)
}

// backoffDelay returns the delay before retry attempt n (1-indexed),
// doubling the configured initial backoff each time.
func backoffDelay(initial time.Duration, attempt int) time.Duration {
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
