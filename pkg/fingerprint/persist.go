package fingerprint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/logging"
)

// recordLengthPrefixSize is the width, in bytes, of each record's
// big-endian length prefix.
const recordLengthPrefixSize = 4

// writeRecord writes a single length-prefixed record to w. A zero-length
// record (used as the terminator) carries no payload.
func writeRecord(w io.Writer, payload []byte) error {
	var lengthBytes [recordLengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBytes[:], uint32(len(payload)))
	if _, err := w.Write(lengthBytes[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// readRecord reads a single length-prefixed record from r. It returns
// io.EOF only when the stream ends cleanly between records; any other
// short read (a length prefix or payload cut off mid-record) is reported
// as errTruncated so callers can distinguish a clean boundary from a
// torn write.
var errTruncated = fmt.Errorf("truncated record")

func readRecord(r io.Reader) ([]byte, error) {
	var lengthBytes [recordLengthPrefixSize]byte
	if _, err := io.ReadFull(r, lengthBytes[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, errTruncated
		}
		return nil, err
	}
	length := binary.BigEndian.Uint32(lengthBytes[:])
	if length == 0 {
		return nil, nil
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errTruncated
	}
	return payload, nil
}

// Save serializes every fingerprint currently in the index to path,
// writing a fresh file and renaming it into place so that a crash mid-save
// never leaves a half-written index behind (see
// pkg/filesystem.WriteFileAtomic). Digests are written in map iteration
// order, which is unspecified but immaterial since the index has no
// notion of ordering.
func (idx *Index) Save(path string, logger *logging.Logger) error {
	idx.mu.RLock()
	fingerprints := make([]Fingerprint, 0, len(idx.set))
	for fp := range idx.set {
		fingerprints = append(fingerprints, fp)
	}
	idx.mu.RUnlock()

	buffer := make([]byte, 0, recordLengthPrefixSize+len(fingerprints)*(recordLengthPrefixSize+Size))
	writer := &sliceWriter{buf: buffer}
	for _, fp := range fingerprints {
		if err := writeRecord(writer, fp[:]); err != nil {
			return fmt.Errorf("unable to serialize fingerprint: %w", err)
		}
	}
	if err := writeRecord(writer, nil); err != nil {
		return fmt.Errorf("unable to serialize terminator: %w", err)
	}

	if err := filesystem.WriteFileAtomic(path, writer.buf, 0600, logger); err != nil {
		return fmt.Errorf("unable to write fingerprint index: %w", err)
	}
	return nil
}

// sliceWriter is an in-memory io.Writer, used so that the serialized index
// can be assembled entirely before a single atomic write, rather than
// streaming records through a file that may need to be cleaned up on a
// mid-write error.
type sliceWriter struct {
	buf []byte
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Load reads a persisted fingerprint index from path and returns the set
// of fingerprints it contains. It reads records until the terminator, a
// clean end-of-file, or a truncated record, whichever comes first; per the
// index's failure semantics, a torn trailing record is tolerated silently
// rather than treated as an error, since the index is always safe to
// reconstruct as a (possibly smaller) subset of what was actually
// ingested.
func Load(path string) ([]Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var fingerprints []Fingerprint
	for {
		payload, err := readRecord(reader)
		if err == io.EOF || err == errTruncated {
			break
		} else if err != nil {
			return nil, fmt.Errorf("unable to read fingerprint record: %w", err)
		}
		if payload == nil {
			// Terminator record.
			break
		}
		if len(payload) != Size {
			return nil, fmt.Errorf("fingerprint record has unexpected length %d", len(payload))
		}
		var fp Fingerprint
		copy(fp[:], payload)
		fingerprints = append(fingerprints, fp)
	}
	return fingerprints, nil
}
