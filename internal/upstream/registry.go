package upstream

import (
	"fmt"
	"sort"
)

// Constructor creates a Fetcher for a source.
type Constructor func(cfg Config) (Fetcher, error)

var registry = map[string]Constructor{}

// Register adds a fetcher constructor under the given source name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the fetcher constructor for the given source name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown upstream source: %s", name)
	}
	return ctor, nil
}

// New resolves cfg.Source and builds its Fetcher.
func New(cfg Config) (Fetcher, error) {
	ctor, err := Get(cfg.Source)
	if err != nil {
		return nil, err
	}
	return ctor(cfg)
}

// Sources returns the names of all registered sources, sorted.
func Sources() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
