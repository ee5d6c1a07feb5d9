// Package config provides the process-wide typed settings registry used by
// every other component: default values, explicit overrides, and text or
// structured (YAML) export/import. It does not define how those exports are
// ultimately persisted to disk or synchronized across processes -- that is
// the concern of the key-value configuration store, which sits outside this
// repository (see spec.md §1).
package config
