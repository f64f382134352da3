package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags the two posting shapes found in index files.
type Kind uint8

const (
	// Simple postings carry only a number: an integer term frequency in a
	// partial index, a tf-idf weight in the final index.
	Simple Kind = iota
	// Detailed postings additionally carry the token positions of the term.
	Detailed
)

// Posting is one (document, statistic) entry under a term.
type Posting struct {
	DocID     string
	Kind      Kind
	Weight    float64
	Positions []int
}

type detailedPosting struct {
	TF        float64 `json:"tf"`
	Positions []int   `json:"positions"`
}

// MarshalJSON encodes the posting value. The document id is the enclosing map
// key and is not part of the value.
func (p Posting) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case Simple:
		return json.Marshal(p.Weight)
	case Detailed:
		positions := p.Positions
		if positions == nil {
			positions = []int{}
		}
		return json.Marshal(detailedPosting{TF: p.Weight, Positions: positions})
	default:
		return nil, fmt.Errorf("unknown posting kind %d", p.Kind)
	}
}

// UnmarshalJSON accepts either a bare number or a {"tf", "positions"} object.
func (p *Posting) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var d detailedPosting
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("decoding detailed posting: %w", err)
		}
		p.Kind = Detailed
		p.Weight = d.TF
		p.Positions = d.Positions
		return nil
	}
	var w float64
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding posting weight: %w", err)
	}
	p.Kind = Simple
	p.Weight = w
	p.Positions = nil
	return nil
}

// PostingList is a term's postings ordered by DocID.
type PostingList []Posting

// Table is the term -> docID -> posting shape shared by partial and final
// index files.
type Table map[string]map[string]Posting

// Sorted returns the postings of term ordered by DocID, with DocID filled in
// from the map keys.
func (t Table) Sorted(term string) PostingList {
	docs := t[term]
	list := make(PostingList, 0, len(docs))
	for id, p := range docs {
		p.DocID = id
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].DocID < list[j].DocID
	})
	return list
}

// DocCount returns the number of distinct document ids appearing anywhere in
// the table.
func (t Table) DocCount() int {
	seen := make(map[string]struct{})
	for _, docs := range t {
		for id := range docs {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}
