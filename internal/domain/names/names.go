// Package names resolves team numbers to display names. Every engine in
// the module works with bare numbers; names exist only for presentation.
package names

import (
	"strconv"
	"sync"
)

// Resolver maps a team number to a display name. Implementations return
// the empty string for unknown teams.
type Resolver interface {
	Name(team int) string
}

// Static is an in-memory Resolver safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	names map[int]string
}

// NewStatic builds a Static resolver. The seed map uses string keys so it
// can be loaded straight from configuration; entries that do not parse as
// positive integers are skipped.
func NewStatic(seed map[string]string) *Static {
	s := &Static{names: make(map[int]string, len(seed))}
	for k, v := range seed {
		team, err := strconv.Atoi(k)
		if err != nil || team < 1 || v == "" {
			continue
		}
		s.names[team] = v
	}
	return s
}

// Name returns the display name for a team, or "" when unknown.
func (s *Static) Name(team int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[team]
}

// Set records or replaces a team's display name. An empty name deletes
// the entry.
func (s *Static) Set(team int, name string) {
	if team < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		delete(s.names, team)
		return
	}
	s.names[team] = name
}

// Len returns the number of known names.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}
