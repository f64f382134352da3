// Package index holds the in-memory index structures: the bounded partial
// index accumulated during a batch, the posting variant read from and written
// to index files, and the read-only final index served to queries.
package index

import (
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
)

type termStat struct {
	freq      int
	positions []int
}

// PartialIndex accumulates term frequencies for the current batch of
// documents.
type PartialIndex struct {
	mu       sync.RWMutex
	index    map[string]map[string]*termStat
	docCount int
}

func NewPartialIndex() *PartialIndex {
	return &PartialIndex{
		index: make(map[string]map[string]*termStat),
	}
}

// AddDocument counts every token of a document under docID. Adding the same
// docID again adds to its existing counts.
func (m *PartialIndex) AddDocument(docID string, tokens []tokenizer.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, token := range tokens {
		docs, ok := m.index[token.Term]
		if !ok {
			docs = make(map[string]*termStat)
			m.index[token.Term] = docs
		}
		st, ok := docs[docID]
		if !ok {
			st = &termStat{positions: make([]int, 0, 4)}
			docs[docID] = st
		}
		st.freq++
		st.positions = append(st.positions, token.Position)
	}
	m.docCount++
}

// Snapshot copies the partial index into a Table. With positions set the
// postings are Detailed, otherwise Simple integer frequencies.
func (m *PartialIndex) Snapshot(positions bool) Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table := make(Table, len(m.index))
	for term, docs := range m.index {
		out := make(map[string]Posting, len(docs))
		for docID, st := range docs {
			p := Posting{DocID: docID, Kind: Simple, Weight: float64(st.freq)}
			if positions {
				p.Kind = Detailed
				p.Positions = append([]int(nil), st.positions...)
				sort.Ints(p.Positions)
			}
			out[docID] = p
		}
		table[term] = out
	}
	return table
}

// Len returns the number of distinct terms.
func (m *PartialIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

// DocCount returns the number of AddDocument calls since the last Reset.
func (m *PartialIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docCount
}

func (m *PartialIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = make(map[string]map[string]*termStat)
	m.docCount = 0
}
