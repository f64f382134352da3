package spell

import (
	"reflect"
	"testing"
)

func TestCorrectSingleTerm(t *testing.T) {
	c := NewCorrector([]string{"apple", "hello", "world", "zebra"}, 0.85, 0.80)

	got := c.Correct([]string{"helo"})
	if !got.Corrected || !reflect.DeepEqual(got.Terms, []string{"hello"}) {
		t.Errorf("Correct(helo) = %+v, want [hello] corrected", got)
	}

	got = c.Correct([]string{"hello"})
	if got.Corrected || !reflect.DeepEqual(got.Terms, []string{"hello"}) {
		t.Errorf("Correct(hello) = %+v, want unchanged", got)
	}
}

func TestCorrectKeepsUnmatchedTerms(t *testing.T) {
	c := NewCorrector([]string{"apple", "hello", "world"}, 0.85, 0.80)
	got := c.Correct([]string{"qqqq", "wrld"})
	want := []string{"qqqq", "world"}
	if !got.Corrected || !reflect.DeepEqual(got.Terms, want) {
		t.Errorf("got %+v, want %v corrected", got, want)
	}
}

func TestCorrectWholePhrase(t *testing.T) {
	c := NewCorrector([]string{"hello", "world"}, 0.85, 0.80)
	got := c.Correct([]string{"helo", "world"})
	if !got.Corrected || !reflect.DeepEqual(got.Terms, []string{"hello", "world"}) {
		t.Errorf("got %+v", got)
	}

	exact := c.Correct([]string{"hello", "world"})
	if exact.Corrected {
		t.Errorf("exact phrase should not count as a correction: %+v", exact)
	}
}

func TestCorrectEmptyInputs(t *testing.T) {
	if got := NewCorrector(nil, 0.85, 0.80).Correct([]string{"cat"}); got.Corrected || got.Terms[0] != "cat" {
		t.Errorf("empty vocabulary: %+v", got)
	}
	if got := NewCorrector([]string{"cat"}, 0.85, 0.80).Correct(nil); got.Corrected || len(got.Terms) != 0 {
		t.Errorf("no terms: %+v", got)
	}
}

func TestClosestTieBreak(t *testing.T) {
	// "cat" is equally similar to "bat" and "cot"; the larger string wins.
	got, ok := closest("cat", []string{"bat", "cot"}, [][]string{chars("bat"), chars("cot")}, 0.6)
	if !ok || got != "cot" {
		t.Errorf("closest = %q, %v; want cot", got, ok)
	}
}
