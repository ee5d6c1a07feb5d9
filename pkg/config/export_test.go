package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestExportImportTextRoundTrip(t *testing.T) {
	r := NewRegistry()
	name := Define(r, "demo", "name", "", "default-name")
	count := Define(r, "demo", "count", "", int64(0))
	tags := Define(r, "demo", "tags", "", []string{})

	name.Set("widget")
	count.Set(int64(7))
	tags.Set([]string{"a", "b", "c"})

	exported := ExportText(r)
	if !strings.Contains(exported, "demo.name=widget") {
		t.Fatalf("expected export to contain overridden name, got:\n%s", exported)
	}

	r2 := NewRegistry()
	name2 := Define(r2, "demo", "name", "", "default-name")
	count2 := Define(r2, "demo", "count", "", int64(0))
	tags2 := Define(r2, "demo", "tags", "", []string{})

	if err := ImportText(r2, exported); err != nil {
		t.Fatalf("ImportText failed: %v", err)
	}

	if got := name2.Get(); got != "widget" {
		t.Fatalf("expected imported name %q, got %q", "widget", got)
	}
	if got := count2.Get(); got != 7 {
		t.Fatalf("expected imported count %d, got %d", 7, got)
	}
	if got := tags2.Get(); len(got) != 3 || got[0] != "a" {
		t.Fatalf("expected imported tags [a b c], got %v", got)
	}
}

func TestExportOmitsDefaults(t *testing.T) {
	r := NewRegistry()
	Define(r, "demo", "untouched", "", "default-value")

	if exported := ExportText(r); exported != "" {
		t.Fatalf("expected no export lines for entries at default, got:\n%s", exported)
	}
}

func TestImportTextUnknownEntry(t *testing.T) {
	r := NewRegistry()
	if err := ImportText(r, "demo.nonexistent=value\n"); err == nil {
		t.Fatal("expected error for unknown configuration entry")
	}
}

func TestYAMLExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	r := NewRegistry()
	size := Define(r, "storage", "limit", "", ByteSize(0))
	size.Set(ByteSize(4096))

	if err := ExportYAML(r, path, "1", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	r2 := NewRegistry()
	size2 := Define(r2, "storage", "limit", "", ByteSize(0))
	if err := ImportYAML(r2, path); err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	if got := size2.Get(); got != ByteSize(4096) {
		t.Fatalf("expected imported size 4096, got %d", got)
	}
}

func TestPriorityMapRoundTrip(t *testing.T) {
	r := NewRegistry()
	m := Define(r, "queue", "priority_map", "", map[string]int{})
	m.Set(map[string]int{"jpg": 10, "raw": 80})

	exported := ExportText(r)

	r2 := NewRegistry()
	m2 := Define(r2, "queue", "priority_map", "", map[string]int{})
	if err := ImportText(r2, exported); err != nil {
		t.Fatalf("ImportText failed: %v", err)
	}
	got := m2.Get()
	if got["jpg"] != 10 || got["raw"] != 80 {
		t.Fatalf("expected round-tripped priority map, got %v", got)
	}
}
