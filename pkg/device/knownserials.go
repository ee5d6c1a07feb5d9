package device

import (
	"strings"

	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/logging"
)

const (
	recordSeparator = "||"
	fieldSeparator  = "::"
)

// encodeKnownSerials renders records as "serial::label" joined by "||",
// per the known-serials persistence format.
func encodeKnownSerials(records []knownSerialRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.serial+fieldSeparator+r.label)
	}
	return strings.Join(parts, recordSeparator)
}

// knownSerialRecord is one entry of the known-serials list.
type knownSerialRecord struct {
	serial string
	label  string
}

// decodeKnownSerials parses the "serial::label" || "serial::label" ...
// format. Trailing separators are tolerated (they produce an empty
// trailing segment, which is skipped); an invalid record -- missing the
// "::" field separator, or with an empty serial -- is skipped rather than
// aborting the whole parse.
func decodeKnownSerials(text string) []knownSerialRecord {
	var records []knownSerialRecord
	for _, segment := range strings.Split(text, recordSeparator) {
		if segment == "" {
			continue
		}
		fields := strings.SplitN(segment, fieldSeparator, 2)
		if len(fields) != 2 || fields[0] == "" {
			continue
		}
		records = append(records, knownSerialRecord{serial: fields[0], label: fields[1]})
	}
	return records
}

// loadKnownSerials reads and decodes the known-serials file at path. A
// missing file is not an error -- it simply yields no records, as on
// first run.
func loadKnownSerials(path string) ([]knownSerialRecord, error) {
	data, err := readFileTolerant(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decodeKnownSerials(string(data)), nil
}

// saveKnownSerials writes records to path atomically.
func saveKnownSerials(path string, records []knownSerialRecord, logger *logging.Logger) error {
	return filesystem.WriteFileAtomic(path, []byte(encodeKnownSerials(records)), 0600, logger)
}
