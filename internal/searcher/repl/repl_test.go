package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
)

func newExecutor() *executor.Executor {
	return executor.New(index.NewFinalIndex(index.Table{
		"hello": {"https://example.com/a": {Weight: 1.2}, "https://example.com/b": {Weight: 0.4}},
		"world": {"https://example.com/b": {Weight: 0.9}},
		"apple": {"https://example.com/c": {Weight: 2}},
		"river": {"https://example.com/d": {Weight: 0.7}},
	}), config.Default().Search, nil)
}

func TestRunUntilExit(t *testing.T) {
	in := strings.NewReader("hello\nthe\nEXIT\nhello\n")
	var out bytes.Buffer
	if err := Run(context.Background(), in, &out, newExecutor(), 10); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Count(got, "Top Search Results:") != 1 {
		t.Errorf("expected one result block after exit, got:\n%s", got)
	}
	if !strings.Contains(got, "1. https://example.com/a (Score: 1.0000)") {
		t.Errorf("missing top result:\n%s", got)
	}
	if !strings.Contains(got, "No results found.") {
		t.Errorf("stopword query should report no results:\n%s", got)
	}
}

func TestRunEndOfInput(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader("hello"), &out, newExecutor(), 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Top Search Results:") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestAnswerNegativeWeights(t *testing.T) {
	e := executor.New(index.NewFinalIndex(index.Table{
		"hello": {"https://example.com/a": {Weight: 1.2}, "https://example.com/b": {Weight: 0.4}},
	}), config.Default().Search, nil)
	var out bytes.Buffer
	if err := Answer(context.Background(), &out, e, "hello", 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1. https://example.com/a (Score: 3.0000)") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestAnswerEmptyIndex(t *testing.T) {
	e := executor.New(index.Empty(), config.Default().Search, nil)
	var out bytes.Buffer
	if err := Answer(context.Background(), &out, e, "anything", 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No results found.") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestPrintCorrected(t *testing.T) {
	e := newExecutor()
	res, err := e.Search(context.Background(), "helo", 10)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Print(&out, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Showing results for: hello") {
		t.Errorf("output:\n%s", out.String())
	}
}
