package extract

import (
	"strings"
	"testing"
)

const page = `<html><head><title>Search Lab</title><style>.x{}</style></head>
<body>
<h1>Indexing</h1>
<h2>Merging</h2>
<h3>Ranking</h3>
<p>Body text with <b>bold</b> and <strong>strong</strong> words.</p>
<script>var ignored = 1;</script>
</body></html>`

func TestFromHTML(t *testing.T) {
	f, err := FromHTML(page)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if f.Title != "Search Lab" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.H1 != "Indexing" || f.H2 != "Merging" || f.H3 != "Ranking" {
		t.Errorf("headings = %q %q %q", f.H1, f.H2, f.H3)
	}
	if f.Emphasis != "bold strong" {
		t.Errorf("Emphasis = %q", f.Emphasis)
	}
	if strings.Contains(f.Body, "ignored") || strings.Contains(f.Body, ".x{}") {
		t.Errorf("script/style leaked into body: %q", f.Body)
	}
	if !strings.Contains(f.Body, "Body text with bold and strong words.") {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestRepeatCount(t *testing.T) {
	tests := map[float64]int{5: 5, 3: 3, 2.5: 2, 2: 2, 1: 1, 3.5: 4, 0: 0, -1: 0}
	for w, want := range tests {
		if got := RepeatCount(w); got != want {
			t.Errorf("RepeatCount(%v) = %d, want %d", w, got, want)
		}
	}
}

func TestWeightedRatios(t *testing.T) {
	f := Fields{Title: "t", H1: "a", H2: "b", H3: "c", Emphasis: "e", Body: "body"}
	got := f.Weighted(DefaultWeights)
	want := "t t t t t a a a b b c c e e body"
	if got != want {
		t.Errorf("Weighted = %q, want %q", got, want)
	}
}

func TestWeightedSkipsEmptyFieldsAndIsDeterministic(t *testing.T) {
	f := Fields{Title: "  only   title ", Body: "rest"}
	first := f.Weighted(DefaultWeights)
	if first != "only title only title only title only title only title rest" {
		t.Errorf("Weighted = %q", first)
	}
	if second := f.Weighted(DefaultWeights); second != first {
		t.Errorf("not deterministic: %q vs %q", first, second)
	}
	if (Fields{}).Weighted(DefaultWeights) != "" {
		t.Error("empty fields should give empty text")
	}
}

func TestWeightedText(t *testing.T) {
	text, err := WeightedText("<html><head><title>Hi</title></head><body><p>there</p></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	// title x5, then body (which repeats nothing from head)
	if text != "Hi Hi Hi Hi Hi there" {
		t.Errorf("WeightedText = %q", text)
	}
}
