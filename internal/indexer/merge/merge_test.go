package merge

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

func partial(docs map[string]string) index.Table {
	m := index.NewPartialIndex()
	for id, text := range docs {
		m.AddDocument(id, tokenizer.Tokenize(text))
	}
	return m.Snapshot(false)
}

func TestThreeDocumentExample(t *testing.T) {
	combined := make(index.Table)
	Combine(combined, partial(map[string]string{"A": "cat dog cat", "B": "dog bird"}))
	Combine(combined, partial(map[string]string{"C": "cat bird bird"}))

	if got := combined["cat"]["A"].Weight; got != 2 {
		t.Errorf("tf(cat, A) = %v, want 2", got)
	}
	if got := combined["cat"]["C"].Weight; got != 1 {
		t.Errorf("tf(cat, C) = %v, want 1", got)
	}

	final := ComputeTFIDF(combined)
	if final.DocCount() != 3 {
		t.Fatalf("DocCount = %d, want 3", final.DocCount())
	}
	if final.DocFreq("cat") != 2 {
		t.Fatalf("DocFreq(cat) = %d, want 2", final.DocFreq("cat"))
	}
	for _, p := range final.Postings("cat") {
		if p.Weight != 0 {
			t.Errorf("cat/%s weight = %v, want 0", p.DocID, p.Weight)
		}
	}
}

func TestCombineIsOrderIndependent(t *testing.T) {
	parts := []index.Table{
		partial(map[string]string{"A": "cat dog cat", "B": "dog"}),
		partial(map[string]string{"A": "cat", "C": "bird"}),
		partial(map[string]string{"D": "dog bird dog"}),
	}
	forward := make(index.Table)
	for _, p := range parts {
		Combine(forward, p)
	}
	backward := make(index.Table)
	for i := len(parts) - 1; i >= 0; i-- {
		Combine(backward, parts[i])
	}
	if !reflect.DeepEqual(forward, backward) {
		t.Errorf("merge order changed the result:\n%v\n%v", forward, backward)
	}
	if got := forward["cat"]["A"].Weight; got != 3 {
		t.Errorf("summed tf = %v, want 3", got)
	}
}

func TestIDF(t *testing.T) {
	if got := IDF(3, 2); got != 0 {
		t.Errorf("IDF(3,2) = %v, want 0", got)
	}
	if got := IDF(1, 1); got >= 0 {
		t.Errorf("IDF(1,1) = %v, want negative", got)
	}
	if got, want := IDF(10, 1), math.Log(5); math.Abs(got-want) > 1e-12 {
		t.Errorf("IDF(10,1) = %v, want %v", got, want)
	}
}

func TestWeightMonotonicInTF(t *testing.T) {
	idf := IDF(100, 3)
	prev := math.Inf(-1)
	for tf := 1; tf <= 5; tf++ {
		w := float64(tf) * idf
		if w < prev {
			t.Fatalf("weight decreased at tf=%d", tf)
		}
		prev = w
	}
}

func TestNegativeIDFPreserved(t *testing.T) {
	final := ComputeTFIDF(partial(map[string]string{"A": "cat"}))
	p := final.Postings("cat")
	if len(p) != 1 {
		t.Fatalf("postings = %+v", p)
	}
	if want := math.Log(0.5); math.Abs(p[0].Weight-want) > 1e-12 {
		t.Errorf("weight = %v, want %v", p[0].Weight, want)
	}
}

func TestCombineKeepsPositions(t *testing.T) {
	dst := make(index.Table)
	Combine(dst, index.Table{"cat": {"A": {Kind: index.Detailed, Weight: 1, Positions: []int{7}}}})
	Combine(dst, index.Table{"cat": {"A": {Kind: index.Detailed, Weight: 2, Positions: []int{1, 3}}}})
	got := dst["cat"]["A"]
	if got.Weight != 3 || !reflect.DeepEqual(got.Positions, []int{1, 3, 7}) {
		t.Errorf("got %+v", got)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "final.json")
	parts := []index.Table{
		partial(map[string]string{"A": "cat dog cat", "B": "dog bird"}),
		partial(map[string]string{"C": "cat bird bird"}),
	}
	for seq, p := range parts {
		if _, err := segment.WritePartial(dir, seq, p); err != nil {
			t.Fatal(err)
		}
	}

	final, res, err := Run(context.Background(), Options{PartialDir: dir, FinalPath: finalPath, Concurrency: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Partials != 2 || res.Terms != 3 || res.Documents != 3 {
		t.Errorf("result = %+v", res)
	}
	loaded, err := segment.ReadFinal(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.Vocabulary(), final.Vocabulary()) {
		t.Errorf("persisted vocabulary %v != %v", loaded.Vocabulary(), final.Vocabulary())
	}
	want := 2 * math.Log(3.0/3.0)
	if got := loaded.Postings("cat")[0].Weight; got != want {
		t.Errorf("cat/A = %v, want %v", got, want)
	}
}

func TestRunNoPartialsWritesEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "final.json")
	final, res, err := Run(context.Background(), Options{PartialDir: filepath.Join(dir, "none"), FinalPath: finalPath})
	if err != nil {
		t.Fatal(err)
	}
	if final.NumTerms() != 0 || res.Partials != 0 {
		t.Errorf("expected empty index, got %+v", res)
	}
	if _, err := os.Stat(finalPath); err != nil {
		t.Errorf("final file not written: %v", err)
	}
}

func TestRunCorruptPartial(t *testing.T) {
	dir := t.TempDir()
	if _, err := segment.WritePartial(dir, 0, partial(map[string]string{"A": "cat"})); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, segment.PartialName(1))
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := Run(context.Background(), Options{PartialDir: dir, FinalPath: filepath.Join(dir, "final.json"), Concurrency: 4})
	if !errors.Is(err, apperrors.ErrCorruptIndex) {
		t.Fatalf("got %v, want ErrCorruptIndex", err)
	}
	if _, err := os.Stat(filepath.Join(dir, segment.PartialName(0))); err != nil {
		t.Error("valid partial should remain after failed merge")
	}
}
