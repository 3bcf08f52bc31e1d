package engine

import (
	"context"
	"sort"
	"sync"
)

// Source scrapes one kind of site into ContentItems.
type Source interface {
	Name() string
	Scrape(ctx context.Context, task ScrapeTask) ([]ContentItem, error)
}

var (
	sourcesMu sync.RWMutex
	sourceSet = map[string]Source{}
)

// RegisterSource makes s available to Scrape under s.Name(), replacing any
// source registered under the same name.
func RegisterSource(s Source) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sourceSet[s.Name()] = s
}

// SourceFor returns the source registered for name, falling back to the
// generic source. It returns nil when neither is registered.
func SourceFor(name string) Source {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	if s, ok := sourceSet[name]; ok {
		return s
	}
	return sourceSet[SourceGeneric]
}

// SourceNames lists registered sources, sorted.
func SourceNames() []string {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	names := make([]string, 0, len(sourceSet))
	for n := range sourceSet {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
