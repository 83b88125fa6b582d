package diagnostics

import (
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// MemorySink holds the published set in memory for presentation layers
// (and tests) to snapshot.
type MemorySink struct {
	mu        sync.RWMutex
	published map[uri.URI][]protocol.Diagnostic
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{published: make(map[uri.URI][]protocol.Diagnostic)}
}

// Set replaces the published list for u.
func (s *MemorySink) Set(u uri.URI, diags []protocol.Diagnostic) {
	s.mu.Lock()
	s.published[u] = diags
	s.mu.Unlock()
}

// Delete removes the published list for u.
func (s *MemorySink) Delete(u uri.URI) {
	s.mu.Lock()
	delete(s.published, u)
	s.mu.Unlock()
}

// Clear drops the whole published set.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	s.published = make(map[uri.URI][]protocol.Diagnostic)
	s.mu.Unlock()
}

// Get returns the published list for u.
func (s *MemorySink) Get(u uri.URI) []protocol.Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published[u]
}

// Count returns how many diagnostics are published for u.
func (s *MemorySink) Count(u uri.URI) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.published[u])
}

// Len returns how many files have published diagnostics.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.published)
}
