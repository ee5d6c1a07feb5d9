package config

import (
	"github.com/dustin/go-humanize"
)

// ByteSize is a uint64 value that supports unmarshalling from both
// human-friendly string representations (e.g. "4 GB") and plain numeric
// strings. It can be cast to a uint64 value, where it represents a byte
// count.
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler, used when loading byte
// size entries from the text or YAML export formats.
func (s *ByteSize) UnmarshalText(textBytes []byte) error {
	value, err := humanize.ParseBytes(string(textBytes))
	if err != nil {
		return err
	}
	*s = ByteSize(value)
	return nil
}

// MarshalText implements encoding.TextMarshaler, producing a human-readable
// representation (e.g. "4.0 GB") suitable for the text and YAML export
// formats.
func (s ByteSize) MarshalText() ([]byte, error) {
	return []byte(humanize.Bytes(uint64(s))), nil
}

// String implements fmt.Stringer.
func (s ByteSize) String() string {
	return humanize.Bytes(uint64(s))
}
