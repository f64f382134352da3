package tokenizer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func terms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Term
	}
	return out
}

func TestTokenizeKeepsStopwords(t *testing.T) {
	got := terms(Tokenize("The Cat and the DOG!"))
	want := []string{"the", "cat", "and", "the", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizePositionsAndStemming(t *testing.T) {
	tokens := Tokenize("running, runs; ran -- 2024 rank42")
	want := []Token{
		{Term: "run", Position: 0},
		{Term: "run", Position: 1},
		{Term: "ran", Position: 2},
		{Term: "2024", Position: 3},
		{Term: "rank42", Position: 4},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize = %+v, want %+v", tokens, want)
	}
}

func TestTokenizeSplitsOnPunctuation(t *testing.T) {
	got := terms(Tokenize("e-mail me"))
	want := []string{"e", "mail", "me"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeQueryDropsStopwords(t *testing.T) {
	got := TokenizeQuery("What is the Cat in the garden?")
	want := []string{"cat", "garden"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeQuery = %v, want %v", got, want)
	}
}

func TestTokenizeQueryAllStopwords(t *testing.T) {
	if got := TokenizeQuery("the and of to"); len(got) != 0 {
		t.Errorf("TokenizeQuery = %v, want empty", got)
	}
	if got := TokenizeQuery("   "); len(got) != 0 {
		t.Errorf("TokenizeQuery(blank) = %v, want empty", got)
	}
}

func TestDocumentAndQueryAgreeOnTerms(t *testing.T) {
	doc := terms(Tokenize("Searching engines"))
	query := TokenizeQuery("searching engines")
	if !reflect.DeepEqual(doc, query) {
		t.Errorf("doc %v != query %v", doc, query)
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := strings.Repeat(fmt.Sprintf("distributed search engines index %d documents quickly ", 7), 200)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Tokenize(text)
	}
}
