package fingerprint

import (
	"io"
	"sync"

	"github.com/rivergate/usbvault/pkg/config"
)

// bufferPool recycles the byte buffers used to stream file contents through
// the hasher, sized from config.HashBufferSize. Pooling these buffers keeps
// the scheduler's worker path (one hash per admitted task, potentially many
// concurrent) from pressuring the allocator with one multi-hundred-kilobyte
// slice per file.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, config.HashBufferSize.Get())
	},
}

// getBuffer retrieves a pooled buffer, reallocating it if the configured
// size has since grown past what's pooled. It never returns a buffer
// smaller than the currently configured size.
func getBuffer() []byte {
	buf := bufferPool.Get().([]byte)
	if want := int(config.HashBufferSize.Get()); cap(buf) < want {
		return make([]byte, want)
	}
	return buf
}

// putBuffer returns a buffer to the pool. Callers must invoke this on
// every exit path -- success or error -- so that a failed hash never leaks
// its buffer.
func putBuffer(buf []byte) {
	bufferPool.Put(buf)
}

// HashFile streams r's contents through a pooled buffer and returns its
// fingerprint. It is the entry point the scheduler's worker path uses to
// compute a fingerprint while copying (see pkg/scheduler).
func HashFile(r io.Reader) (fp Fingerprint, err error) {
	buf := getBuffer()
	defer putBuffer(buf)
	return Hash(r, buf)
}
