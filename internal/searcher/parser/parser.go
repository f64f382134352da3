// Package parser turns raw query text into the normalized terms the ranker
// scores.
package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
)

// QueryPlan holds the normalized terms of one query in input order.
// Repeated terms are kept so the ranker can count them.
type QueryPlan struct {
	RawQuery string
	Terms    []string
}

// Parse lowercases, tokenizes and stems query, dropping stop-words.
func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		RawQuery: query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	plan.Terms = tokenizer.TokenizeQuery(query)
	return plan
}

// Empty reports whether no searchable term survived parsing.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// WithTerms returns a copy of the plan using terms instead, e.g. after spell
// correction.
func (p *QueryPlan) WithTerms(terms []string) *QueryPlan {
	return &QueryPlan{RawQuery: p.RawQuery, Terms: terms}
}

// Normalized returns the terms joined by single spaces.
func (p *QueryPlan) Normalized() string {
	return strings.Join(p.Terms, " ")
}
