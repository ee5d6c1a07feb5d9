// Package fingerprint implements content-addressed duplicate detection for
// ingested files: a SHA-256 digest of a file's full contents, a concurrent
// set of digests seen so far, and length-prefixed persistence of that set
// to a single file on disk.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Size is the number of bytes in a Fingerprint (SHA-256 digest length).
const Size = sha256.Size

// Fingerprint is a 32-byte SHA-256 digest of a file's full contents.
// Equality is byte-wise; fingerprints carry no ordering.
type Fingerprint [Size]byte

// String renders the fingerprint as a lowercase hex string.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether the fingerprint is the zero value, used
// internally to recognize the terminator record in the persisted index
// file (see persist.go).
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Hash streams r's full contents through buf (which must have non-zero
// length) and returns its fingerprint. The caller owns buf and is
// responsible for returning it to whatever pool it came from; Hash itself
// never retains a reference to it past return.
func Hash(r io.Reader, buf []byte) (Fingerprint, error) {
	hasher := sha256.New()
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return Fingerprint{}, fmt.Errorf("unable to stream contents through hasher: %w", err)
	}
	var result Fingerprint
	copy(result[:], hasher.Sum(nil))
	return result, nil
}
