package device

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rivergate/usbvault/pkg/logging"
)

func TestEncodeDecodeKnownSerialsRoundTrip(t *testing.T) {
	records := []knownSerialRecord{
		{serial: "SER1", label: "Backup Drive"},
		{serial: "SER2", label: "Photos"},
	}
	encoded := encodeKnownSerials(records)
	decoded := decodeKnownSerials(encoded)
	if !reflect.DeepEqual(records, decoded) {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, records)
	}
}

func TestDecodeKnownSerialsTrailingSeparatorTolerated(t *testing.T) {
	decoded := decodeKnownSerials("SER1::Label||")
	if len(decoded) != 1 || decoded[0].serial != "SER1" {
		t.Errorf("unexpected decode result: %+v", decoded)
	}
}

func TestDecodeKnownSerialsSkipsInvalidRecords(t *testing.T) {
	decoded := decodeKnownSerials("badrecord||SER1::Label")
	if len(decoded) != 1 || decoded[0].serial != "SER1" {
		t.Errorf("expected invalid record to be skipped, got %+v", decoded)
	}
}

func TestSaveAndLoadKnownSerials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known-serials")
	records := []knownSerialRecord{{serial: "SER1", label: "Backup"}}

	if err := saveKnownSerials(path, records, logging.RootLogger); err != nil {
		t.Fatal("saveKnownSerials failed:", err)
	}

	loaded, err := loadKnownSerials(path)
	if err != nil {
		t.Fatal("loadKnownSerials failed:", err)
	}
	if !reflect.DeepEqual(records, loaded) {
		t.Errorf("load mismatch: %+v != %+v", loaded, records)
	}
}

func TestLoadKnownSerialsMissingFile(t *testing.T) {
	loaded, err := loadKnownSerials(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal("missing known-serials file should not be an error:", err)
	}
	if loaded != nil {
		t.Errorf("expected no records, got %+v", loaded)
	}
}
