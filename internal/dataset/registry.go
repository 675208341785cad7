package dataset

import (
	"fmt"
	"sort"
)

// Constructor is a function that creates a new Loader instance.
type Constructor func() Loader

var registry = map[string]Constructor{}

// Register adds a loader constructor under the given format name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the loader constructor for the given format name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dataset format: %s", name)
	}
	return ctor, nil
}

// Formats returns the names of all registered dataset formats, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
