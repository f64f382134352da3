// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input, splits on non-alphanumeric boundaries and applies the
// snowball English stemmer. Stop-words are removed from queries only:
// documents keep them so their positions and frequencies stay intact.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token represents a single normalised term and its position in the
// token stream.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks document text into stemmed, lowercased Tokens. Positions
// count emitted tokens from zero.
func Tokenize(text string) []Token {
	words := split(text)
	tokens := make([]Token, 0, len(words))
	for _, word := range words {
		stemmed := Stem(word)
		if stemmed == "" {
			continue
		}
		tokens = append(tokens, Token{Term: stemmed, Position: len(tokens)})
	}
	return tokens
}

// TokenizeQuery normalises query text the same way as Tokenize and then
// drops stop-words. The stop-word test runs on the unstemmed word.
func TokenizeQuery(text string) []string {
	words := split(text)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if IsStopword(word) {
			continue
		}
		if stemmed := Stem(word); stemmed != "" {
			terms = append(terms, stemmed)
		}
	}
	return terms
}

// IsStopword reports whether the lowercased word is in the stop-word set.
func IsStopword(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Stem reduces a lowercased word to its snowball English stem.
func Stem(word string) string {
	return english.Stem(word, true)
}

func split(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
