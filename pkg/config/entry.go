package config

import "fmt"

// Entry is a typed, named configuration value bound to a Registry. It is
// the handle that every other package uses to declare and read its
// tunables: a category, a key, a human-readable description, a default,
// and a place to read and write the live (possibly overridden) value.
type Entry[T any] struct {
	registry    *Registry
	category    string
	key         string
	description string
	def         T
}

// Define declares a new configuration entry against the given registry and
// returns a handle to it. It panics if the category/key pair has already
// been declared, since that indicates two components claiming the same
// setting -- a programming error, not a runtime condition.
func Define[T any](r *Registry, category, key, description string, def T) *Entry[T] {
	e := &Entry[T]{
		registry:    r,
		category:    category,
		key:         key,
		description: description,
		def:         def,
	}
	r.declare(category, key, def)
	r.registerDescriptor(&descriptor{
		category:    category,
		key:         key,
		description: description,
		getText: func() string {
			text, err := marshalValue(e.Get())
			if err != nil {
				return fmt.Sprintf("%v", e.Get())
			}
			return text
		},
		setText: func(s string) error {
			parsed, err := parseValue(s, any(e.def))
			if err != nil {
				return err
			}
			typed, ok := parsed.(T)
			if !ok {
				return fmt.Errorf("type mismatch for %s.%s", category, key)
			}
			e.Set(typed)
			return nil
		},
		reset: e.Clear,
	})
	return e
}

// Get returns the entry's current value, falling back to its default if it
// has never been set or has since been cleared.
func (e *Entry[T]) Get() T {
	if v, ok := e.registry.get(e.category, e.key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	return e.def
}

// Set overrides the entry's value.
func (e *Entry[T]) Set(value T) {
	e.registry.set(e.category, e.key, value)
}

// Clear removes any override, reverting the entry to its default.
func (e *Entry[T]) Clear() {
	e.registry.clear(e.category, e.key)
}

// Default returns the entry's default value.
func (e *Entry[T]) Default() T {
	return e.def
}

// Category returns the entry's category name.
func (e *Entry[T]) Category() string {
	return e.category
}

// Key returns the entry's key name (without its category prefix).
func (e *Entry[T]) Key() string {
	return e.key
}

// Description returns the entry's human-readable description.
func (e *Entry[T]) Description() string {
	return e.description
}
