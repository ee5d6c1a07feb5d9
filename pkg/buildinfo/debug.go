package buildinfo

import (
	"os"
)

// DebugEnabled controls whether or not debug logging is enabled for usbvault.
// It is set automatically based on the USBVAULT_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("USBVAULT_DEBUG") == "1"
}
