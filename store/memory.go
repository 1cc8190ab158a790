// Package store provides retrieval backends: structured stores answering
// exact-match metadata filters (in-memory here, SQLite and Redis in the
// subpackages) and, under store/postgres, a pgvector-backed hybrid backend.
package store

import (
	"context"
	"sync"

	"github.com/smallnest/ragfusion"
)

// MemoryStore is an in-memory StructuredStore. Filter results come back in
// insertion order, which keeps structured retrieval deterministic.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []ragfusion.Chunk
	byID   map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]int),
	}
}

var _ ragfusion.StructuredStore = (*MemoryStore)(nil)

// Add stores chunks, replacing any existing chunk with the same ID in place
// so insertion order is preserved across rebuilds.
func (s *MemoryStore) Add(ctx context.Context, chunks []ragfusion.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if i, ok := s.byID[chunk.ID]; ok {
			s.chunks[i] = chunk
			continue
		}
		s.byID[chunk.ID] = len(s.chunks)
		s.chunks = append(s.chunks, chunk)
	}
	return nil
}

// Filter returns chunks whose metadata matches every supplied filter, in
// insertion order, up to limit (limit <= 0 means no limit).
func (s *MemoryStore) Filter(ctx context.Context, filters map[string]string, limit int) ([]ragfusion.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ragfusion.Chunk
	for _, chunk := range s.chunks {
		if !MatchesFilters(chunk, filters) {
			continue
		}
		out = append(out, chunk)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.byID = make(map[string]int)
	return nil
}

// MatchesFilters reports whether a chunk's metadata satisfies every filter
// entry exactly. An empty filter set matches everything.
func MatchesFilters(chunk ragfusion.Chunk, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := chunk.Metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
