package must

import (
	"io"
	"os"

	"github.com/rivergate/usbvault/pkg/logging"
)

// Close closes a closer, logging a warning if it fails. Used on cleanup paths
// where the close error cannot change the outcome of the caller (the data has
// already been flushed, or the operation already failed for another reason).
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}

// OSRemove removes a file, logging a warning on failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("Unable to remove '%s': %s", name, err.Error())
	}
}

// Succeed logs a warning identifying a best-effort task if it failed. It is
// for operations whose failure is recoverable but worth recording.
func Succeed(err error, task string, logger *logging.Logger) {
	if err != nil {
		logger.Warnf("Unable to succeed at %s; %s", task, err.Error())
	}
}

// Encode invokes an encoder's Encode method, logging a warning on failure.
func Encode(e interface {
	Encode(v any) error
}, value any, logger *logging.Logger) {
	if err := e.Encode(value); err != nil {
		logger.Warnf("Unable to encode %v: %s", value, err.Error())
	}
}
