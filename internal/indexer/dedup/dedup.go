// Package dedup drops pages whose weighted text is byte-identical to a page
// already indexed in the same run.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ContentHash is the SHA-256 digest of a page's weighted text.
type ContentHash [sha256.Size]byte

// String returns the lowercase hex form of the hash.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// Hash computes the ContentHash of text.
func Hash(text string) ContentHash {
	return sha256.Sum256([]byte(text))
}

// Set is the run-scoped set of content hashes seen so far. It is safe for
// concurrent use so that sharded workers can share one set.
type Set struct {
	mu   sync.Mutex
	seen map[ContentHash]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[ContentHash]struct{})}
}

// ShouldIndex reports whether text has not been seen yet, recording it when
// so. A false result means the document must produce no postings.
func (s *Set) ShouldIndex(text string) bool {
	ok, _ := s.Check(text)
	return ok
}

// Check is ShouldIndex that also returns the computed hash.
func (s *Set) Check(text string) (bool, ContentHash) {
	h := Hash(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[h]; dup {
		return false, h
	}
	s.seen[h] = struct{}{}
	return true, h
}

// Len returns the number of distinct contents recorded.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
