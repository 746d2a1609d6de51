// Package buffer holds the latest known text of every open document.
package buffer

import (
	"slices"
	"sync"
)

// Buffer is an immutable snapshot of a document's full text.
// A Buffer is never modified after it has been stored; updates replace it.
type Buffer struct {
	// URI is the document URI (e.g., "file:///src/Foo/Foo.nuspec").
	URI string

	// Version is the document version as reported by the client.
	Version int32

	// Text is the full document text at this version.
	Text string
}

// Store maps document URIs to their current Buffer.
// It is safe for concurrent access.
type Store struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
}

// NewStore creates a new empty store.
func NewStore() *Store {
	return &Store{
		buffers: make(map[string]*Buffer),
	}
}

// Update stores a fresh buffer for uri, replacing any previous one, and
// returns it. The last Update to complete wins.
func (s *Store) Update(uri string, version int32, text string) *Buffer {
	b := &Buffer{URI: uri, Version: version, Text: text}
	s.mu.Lock()
	s.buffers[uri] = b
	s.mu.Unlock()
	return b
}

// Get returns the current buffer for uri.
func (s *Store) Get(uri string) (*Buffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buffers[uri]
	return b, ok
}

// Close drops the buffer for uri. Closing an unknown URI is a no-op.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, uri)
}

// URIs returns the URIs of all stored buffers in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	uris := make([]string, 0, len(s.buffers))
	for uri := range s.buffers {
		uris = append(uris, uri)
	}
	s.mu.RUnlock()
	slices.Sort(uris)
	return uris
}
