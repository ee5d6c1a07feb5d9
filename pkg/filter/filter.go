// Package filter implements the composable eligibility chain applied to
// every path discovered during ingestion: a basic filter (type, size, age,
// visibility), a suffix filter (whitelist/blacklist/preset), and a
// glob-exclude enrichment, combined with short-circuiting boolean
// combinators.
package filter

import "io/fs"

// Filter tests whether a discovered path is eligible for ingestion. Test
// receives the path relative to the device root and its fs.FileInfo (or
// os.Lstat result, for symlink detection); implementations must not
// follow symlinks themselves.
type Filter interface {
	Test(path string, info fs.FileInfo) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(path string, info fs.FileInfo) bool

// Test implements Filter.
func (f FilterFunc) Test(path string, info fs.FileInfo) bool {
	return f(path, info)
}

// And combines filters with short-circuiting conjunction: the first
// filter to reject a path stops evaluation.
func And(filters ...Filter) Filter {
	return FilterFunc(func(path string, info fs.FileInfo) bool {
		for _, f := range filters {
			if !f.Test(path, info) {
				return false
			}
		}
		return true
	})
}

// Or combines filters with short-circuiting disjunction: the first filter
// to accept a path stops evaluation.
func Or(filters ...Filter) Filter {
	return FilterFunc(func(path string, info fs.FileInfo) bool {
		for _, f := range filters {
			if f.Test(path, info) {
				return true
			}
		}
		return false
	})
}

// Negate inverts a filter's result.
func Negate(f Filter) Filter {
	return FilterFunc(func(path string, info fs.FileInfo) bool {
		return !f.Test(path, info)
	})
}
