package index

import "sort"

// FinalIndex is the merged, read-only index consumed by the query engine.
// Postings of every term are held ordered by DocID.
type FinalIndex struct {
	terms    map[string]PostingList
	vocab    []string
	docCount int
}

// NewFinalIndex builds a FinalIndex from a merged table.
func NewFinalIndex(t Table) *FinalIndex {
	f := &FinalIndex{
		terms:    make(map[string]PostingList, len(t)),
		vocab:    make([]string, 0, len(t)),
		docCount: t.DocCount(),
	}
	for term := range t {
		f.terms[term] = t.Sorted(term)
		f.vocab = append(f.vocab, term)
	}
	sort.Strings(f.vocab)
	return f
}

// Empty returns an index with no terms. Every lookup on it misses.
func Empty() *FinalIndex {
	return &FinalIndex{terms: map[string]PostingList{}}
}

// Postings returns the postings of term, or nil when the term is unknown.
func (f *FinalIndex) Postings(term string) PostingList {
	return f.terms[term]
}

// Contains reports whether term is in the vocabulary.
func (f *FinalIndex) Contains(term string) bool {
	_, ok := f.terms[term]
	return ok
}

// DocFreq returns the number of documents posting term.
func (f *FinalIndex) DocFreq(term string) int {
	return len(f.terms[term])
}

// Vocabulary returns the sorted term set. Callers must not modify it.
func (f *FinalIndex) Vocabulary() []string {
	return f.vocab
}

func (f *FinalIndex) NumTerms() int { return len(f.vocab) }

func (f *FinalIndex) DocCount() int { return f.docCount }

// Table converts the index back into its file shape.
func (f *FinalIndex) Table() Table {
	t := make(Table, len(f.terms))
	for term, list := range f.terms {
		docs := make(map[string]Posting, len(list))
		for _, p := range list {
			docs[p.DocID] = p
		}
		t[term] = docs
	}
	return t
}
