// Package results accumulates generated metadata per media item. The
// scheduler is the only writer; exporters and the UI layer read.
package results

import (
	"sync"

	"stocktag/internal/catalog"
	"stocktag/internal/provider"
)

// Entry pairs an enrolled item with its current generation result.
type Entry struct {
	Item   catalog.MediaItem
	Result provider.Result
}

// Store holds at most one current result per media item.
type Store struct {
	mu      sync.RWMutex
	results map[string]provider.Result
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{results: make(map[string]provider.Result)}
}

// Put stores the result for an item, replacing any earlier result from a
// previous attempt or run.
func (s *Store) Put(itemID string, result provider.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[itemID] = result
}

// Get returns the current result for an item, if any.
func (s *Store) Get(itemID string) (provider.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[itemID]
	return r, ok
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Succeeded returns entries for every item that is currently in succeeded
// status and has a stored result, in catalog enrollment order. Items whose
// status was later invalidated are excluded even if a result remains stored.
func (s *Store) Succeeded(cat *catalog.Catalog) []Entry {
	items := cat.Items()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Status != catalog.StatusSucceeded {
			continue
		}
		result, ok := s.results[item.ID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{Item: item, Result: result})
	}
	return entries
}
