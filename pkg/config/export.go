package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rivergate/usbvault/pkg/encoding"
	"github.com/rivergate/usbvault/pkg/logging"
)

// ExportText renders every overridden entry in the registry as a sequence
// of "category.key=value" lines, one entry per line, sorted by category
// then key. Entries still at their default are omitted; ImportText only
// ever needs to restate what differs from the built-in defaults.
func ExportText(r *Registry) string {
	var builder strings.Builder
	for _, d := range r.sortedDescriptors() {
		if _, overridden := r.get(d.category, d.key); !overridden {
			continue
		}
		fmt.Fprintf(&builder, "%s.%s=%s\n", d.category, d.key, d.getText())
	}
	return builder.String()
}

// ImportText parses the "category.key=value" line format produced by
// ExportText and applies each entry as an override. Blank lines and lines
// beginning with "#" are ignored. An unrecognized category.key is reported
// as an error; a malformed value for a recognized key is reported as an
// error naming that key.
func ImportText(r *Registry, text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		equals := strings.Index(raw, "=")
		if equals < 0 {
			return fmt.Errorf("line %d: expected category.key=value, got %q", line, raw)
		}
		fq, value := strings.TrimSpace(raw[:equals]), raw[equals+1:]
		dot := strings.LastIndex(fq, ".")
		if dot < 0 {
			return fmt.Errorf("line %d: expected category.key, got %q", line, fq)
		}
		category, key := fq[:dot], fq[dot+1:]
		d, ok := r.descriptorFor(category, key)
		if !ok {
			return fmt.Errorf("line %d: unknown configuration entry %q", line, fq)
		}
		if err := d.setText(value); err != nil {
			return fmt.Errorf("line %d: %s: %w", line, fq, err)
		}
	}
	return scanner.Err()
}

// ImportTextFile loads and applies a text export from the given path.
func ImportTextFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ImportText(r, string(data))
}

// ExportTextFile writes a text export of the registry's overrides to the
// given path with os.WriteFile (the file is written in place, not via a
// temporary file and rename).
func ExportTextFile(r *Registry, path string) error {
	return os.WriteFile(path, []byte(ExportText(r)), 0600)
}

// yamlDocument is the on-disk shape of a structured configuration export.
type yamlDocument struct {
	Version    string                       `yaml:"version"`
	ExportDate string                       `yaml:"exportDate"`
	Categories map[string]map[string]string `yaml:"categories"`
}

// BuildYAMLDocument assembles the structured export document for the
// registry's current overrides, stamping it with the given format version
// and export timestamp (RFC 3339, supplied by the caller since this package
// does not call time.Now itself).
func BuildYAMLDocument(r *Registry, version, exportDate string) interface{} {
	doc := &yamlDocument{
		Version:    version,
		ExportDate: exportDate,
		Categories: make(map[string]map[string]string),
	}
	for _, d := range r.sortedDescriptors() {
		if _, overridden := r.get(d.category, d.key); !overridden {
			continue
		}
		category, ok := doc.Categories[d.category]
		if !ok {
			category = make(map[string]string)
			doc.Categories[d.category] = category
		}
		category[d.key] = d.getText()
	}
	return doc
}

// ExportYAML writes a structured YAML export of the registry's overrides to
// the given path.
func ExportYAML(r *Registry, path, version, exportDate string) error {
	return encoding.MarshalAndSaveYAML(path, logging.RootLogger, BuildYAMLDocument(r, version, exportDate))
}

// ImportYAML loads a structured YAML export from the given path and
// applies every listed category/key as an override.
func ImportYAML(r *Registry, path string) error {
	doc := &yamlDocument{}
	if err := encoding.LoadAndUnmarshalYAML(path, doc); err != nil {
		return err
	}
	for category, keys := range doc.Categories {
		for key, value := range keys {
			d, ok := r.descriptorFor(category, key)
			if !ok {
				return fmt.Errorf("unknown configuration entry %q", category+"."+key)
			}
			if err := d.setText(value); err != nil {
				return fmt.Errorf("%s.%s: %w", category, key, err)
			}
		}
	}
	return nil
}
