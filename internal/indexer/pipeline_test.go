package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
)

func testConfig(t *testing.T, batch int) config.IndexerConfig {
	t.Helper()
	cfg := config.Default().Indexer
	cfg.PartialDir = t.TempDir()
	cfg.BatchSize = batch
	cfg.ProgressEvery = 0
	return cfg
}

func page(i int) corpus.Entry {
	return corpus.Entry{
		Path: fmt.Sprintf("site/%d.json", i),
		Record: corpus.Record{
			URL:     fmt.Sprintf("http://example.com/page/%d?x=1", i),
			Content: fmt.Sprintf("<html><body><p>document number %d</p></body></html>", i),
		},
	}
}

func newPipeline(t *testing.T, cfg config.IndexerConfig, rec Recorder) (*Pipeline, *RunContext) {
	t.Helper()
	run := NewRunContext()
	return NewPipeline(run, NewBuilder(cfg, run.Seq, nil), rec, nil), run
}

func TestPartialFileCountFollowsBatchSize(t *testing.T) {
	for _, docs := range []int{0, 1, 999, 1000, 1001} {
		t.Run(fmt.Sprintf("%d_docs", docs), func(t *testing.T) {
			cfg := testConfig(t, 1000)
			p, run := newPipeline(t, cfg, nil)
			ctx := context.Background()
			for i := 0; i < docs; i++ {
				if err := p.Process(ctx, page(i)); err != nil {
					t.Fatalf("Process(%d): %v", i, err)
				}
			}
			if err := p.Flush(ctx); err != nil {
				t.Fatal(err)
			}

			partials, err := segment.ListPartials(cfg.PartialDir)
			if err != nil {
				t.Fatal(err)
			}
			want := (docs + 999) / 1000
			if len(partials) != want {
				t.Errorf("partials = %d, want %d", len(partials), want)
			}
			if got := run.Stats.Indexed.Load(); got != int64(docs) {
				t.Errorf("indexed = %d, want %d", got, docs)
			}
			for i, part := range partials {
				if part.Seq != i {
					t.Errorf("partials[%d].Seq = %d", i, part.Seq)
				}
			}
		})
	}
}

func TestDuplicatesDoNotAdvanceBatch(t *testing.T) {
	cfg := testConfig(t, 2)
	p, run := newPipeline(t, cfg, nil)
	ctx := context.Background()

	same := "<html><body><p>cat dog cat</p></body></html>"
	entries := []corpus.Entry{
		{Record: corpus.Record{URL: "https://a.example.com/1", Content: same}},
		{Record: corpus.Record{URL: "https://b.example.com/2", Content: same}},
		{Record: corpus.Record{URL: "https://a.example.com/1#top", Content: same}},
		{Record: corpus.Record{URL: "https://c.example.com/3", Content: "<p>dog bird</p>"}},
	}
	for _, e := range entries {
		if err := p.Process(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if got := run.Stats.Duplicates.Load(); got != 2 {
		t.Errorf("duplicates = %d, want 2", got)
	}
	partials, _ := segment.ListPartials(cfg.PartialDir)
	if len(partials) != 1 {
		t.Fatalf("partials = %d, want 1", len(partials))
	}
	table, err := segment.ReadTable(partials[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	cat := table["cat"]
	if len(cat) != 1 || cat["https://a.example.com/1"].Weight != 2 {
		t.Errorf("cat postings = %+v", cat)
	}
}

func TestSkippedRecords(t *testing.T) {
	cfg := testConfig(t, 10)
	rec := &fakeRecorder{}
	p, run := newPipeline(t, cfg, rec)
	ctx := context.Background()

	entries := []corpus.Entry{
		{Path: "bad.json", Err: errors.New("unexpected EOF")},
		{Path: "nohost.json", Record: corpus.Record{URL: "/relative/only", Content: "<p>x</p>"}},
		{Path: "ok.json", Record: corpus.Record{URL: "http://example.com/ok", Content: "<p>fine</p>"}},
	}
	for _, e := range entries {
		if err := p.Process(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if got := run.Stats.Skipped.Load(); got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}
	if got := run.Stats.Scanned.Load(); got != 3 {
		t.Errorf("scanned = %d, want 3", got)
	}
	want := map[string]string{
		"bad.json":               StatusUnreadable,
		"nohost.json":            StatusMalformedURL,
		"https://example.com/ok": StatusIndexed,
	}
	for id, status := range want {
		if rec.statuses[id] != status {
			t.Errorf("status[%s] = %q, want %q", id, rec.statuses[id], status)
		}
	}
	if len(rec.batches[0]) != 1 || rec.batches[0][0] != "https://example.com/ok" {
		t.Errorf("batch 0 = %v", rec.batches[0])
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses map[string]string
	batches  map[int][]string
}

func (f *fakeRecorder) RecordDocument(_ context.Context, docID, _ string, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = make(map[string]string)
	}
	f.statuses[docID] = status
	return nil
}

func (f *fakeRecorder) AssignBatch(_ context.Context, seq int, docIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batches == nil {
		f.batches = make(map[int][]string)
	}
	f.batches[seq] = append([]string(nil), docIDs...)
	return nil
}

func BenchmarkPipelineProcess(b *testing.B) {
	cfg := config.Default().Indexer
	cfg.PartialDir = b.TempDir()
	cfg.ProgressEvery = 0
	run := NewRunContext()
	p := NewPipeline(run, NewBuilder(cfg, run.Seq, nil), nil, nil)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.Process(ctx, page(i)); err != nil {
			b.Fatal(err)
		}
	}
}
