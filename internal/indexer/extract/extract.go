// Package extract turns a fetched HTML page into the single field-weighted
// text blob the indexer tokenizes. Fields that signal topic (title, headings,
// emphasis) are repeated so their terms carry more frequency than body text.
package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fields holds the text extracted for each weighted part of a page.
type Fields struct {
	Title    string
	H1       string
	H2       string
	H3       string
	Emphasis string
	Body     string
}

// Weights assigns a repetition weight to every field. Fractional weights are
// rounded half-to-even when turned into repeat counts.
type Weights struct {
	Title    float64
	H1       float64
	H2       float64
	H3       float64
	Emphasis float64
	Body     float64
}

// DefaultWeights yields repeat counts 5:3:2:2:2:1 for
// title:h1:h2:h3:emphasis:body.
var DefaultWeights = Weights{
	Title:    5,
	H1:       3,
	H2:       2.5,
	H3:       2,
	Emphasis: 2.5,
	Body:     1,
}

// RepeatCount converts a weight into the number of times a field's text is
// repeated. 2.5 becomes 2.
func RepeatCount(weight float64) int {
	if weight <= 0 {
		return 0
	}
	return int(math.RoundToEven(weight))
}

// FromHTML extracts Fields from raw markup. script, style and noscript
// content never reaches the body text.
func FromHTML(markup string) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Fields{}, fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return Fields{
		Title:    clean(doc.Find("title").First().Text()),
		H1:       joinTexts(doc.Find("h1")),
		H2:       joinTexts(doc.Find("h2")),
		H3:       joinTexts(doc.Find("h3")),
		Emphasis: joinTexts(doc.Find("b, strong")),
		Body:     clean(body.Text()),
	}, nil
}

// Weighted assembles the weighted text in the order title, h1, h2, h3,
// emphasis, body. The result is deterministic for a given Fields value.
func (f Fields) Weighted(w Weights) string {
	parts := []struct {
		text   string
		weight float64
	}{
		{f.Title, w.Title},
		{f.H1, w.H1},
		{f.H2, w.H2},
		{f.H3, w.H3},
		{f.Emphasis, w.Emphasis},
		{f.Body, w.Body},
	}
	var b strings.Builder
	for _, p := range parts {
		text := clean(p.text)
		if text == "" {
			continue
		}
		for i := 0; i < RepeatCount(p.weight); i++ {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// WeightedText extracts and weights markup with DefaultWeights.
func WeightedText(markup string) (string, error) {
	fields, err := FromHTML(markup)
	if err != nil {
		return "", err
	}
	return fields.Weighted(DefaultWeights), nil
}

func joinTexts(sel *goquery.Selection) string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := clean(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	return strings.Join(texts, " ")
}

// clean collapses runs of whitespace to single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
