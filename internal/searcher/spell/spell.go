// Package spell corrects query terms against the index vocabulary using the
// SequenceMatcher similarity ratio.
package spell

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result is the outcome of correcting one query.
type Result struct {
	Terms     []string
	Corrected bool
}

// Corrector matches query terms against a fixed vocabulary.
type Corrector struct {
	vocab        []string
	vocabChars   [][]string
	known        map[string]struct{}
	phrase       string
	phraseChars  []string
	phraseCutoff float64
	termCutoff   float64
}

// NewCorrector builds a Corrector over vocab, which must be sorted.
func NewCorrector(vocab []string, phraseCutoff, termCutoff float64) *Corrector {
	c := &Corrector{
		vocab:        vocab,
		vocabChars:   make([][]string, len(vocab)),
		known:        make(map[string]struct{}, len(vocab)),
		phraseCutoff: phraseCutoff,
		termCutoff:   termCutoff,
	}
	for i, w := range vocab {
		c.vocabChars[i] = chars(w)
		c.known[w] = struct{}{}
	}
	c.phrase = strings.Join(vocab, " ")
	c.phraseChars = chars(c.phrase)
	return c
}

// Correct first tries to match the whole space-joined query against the
// space-joined vocabulary. Failing that, each term not already in the
// vocabulary is replaced by its closest match, if one clears the term
// cutoff. Corrected is true only when some term changed.
func (c *Corrector) Correct(terms []string) Result {
	if len(terms) == 0 || len(c.vocab) == 0 {
		return Result{Terms: terms}
	}
	joined := strings.Join(terms, " ")
	if _, ok := closest(joined, []string{c.phrase}, [][]string{c.phraseChars}, c.phraseCutoff); ok {
		fixed := strings.Fields(c.phrase)
		return Result{Terms: fixed, Corrected: c.phrase != joined}
	}

	out := make([]string, len(terms))
	corrected := false
	for i, term := range terms {
		out[i] = term
		if _, ok := c.known[term]; ok {
			continue
		}
		if match, ok := closest(term, c.vocab, c.vocabChars, c.termCutoff); ok {
			out[i] = match
			corrected = true
		}
	}
	return Result{Terms: out, Corrected: corrected}
}

// closest returns the candidate with the highest similarity ratio to word
// that reaches cutoff. Equal ratios prefer the lexically larger candidate.
func closest(word string, candidates []string, candidateChars [][]string, cutoff float64) (string, bool) {
	m := difflib.NewMatcher(nil, chars(word))
	best, bestRatio, found := "", 0.0, false
	for i, cand := range candidates {
		m.SetSeq1(candidateChars[i])
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		r := m.Ratio()
		if r < cutoff {
			continue
		}
		if !found || r > bestRatio || (r == bestRatio && cand > best) {
			best, bestRatio, found = cand, r, true
		}
	}
	return best, found
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
