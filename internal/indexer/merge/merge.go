// Package merge combines the partial index files of a run into the final
// index and applies tf-idf weighting.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Combine adds every posting of src into dst. Frequencies of a document that
// appears in both are summed and positions concatenated, so the result does
// not depend on the order tables are combined in.
func Combine(dst, src index.Table) {
	for term, docs := range src {
		into, ok := dst[term]
		if !ok {
			into = make(map[string]index.Posting, len(docs))
			dst[term] = into
		}
		for docID, p := range docs {
			cur, ok := into[docID]
			if !ok {
				p.DocID = docID
				p.Positions = append([]int(nil), p.Positions...)
				into[docID] = p
				continue
			}
			cur.Weight += p.Weight
			if p.Kind == index.Detailed {
				cur.Kind = index.Detailed
				cur.Positions = append(cur.Positions, p.Positions...)
				sort.Ints(cur.Positions)
			}
			into[docID] = cur
		}
	}
}

// IDF returns ln(docCount / (1 + docFreq)). It is zero or negative for terms
// posted by most documents and is not clamped.
func IDF(docCount, docFreq int) float64 {
	return math.Log(float64(docCount) / float64(1+docFreq))
}

// ComputeTFIDF replaces each posting's term frequency in t with tf * idf and
// returns the resulting final index. t is modified in place.
func ComputeTFIDF(t index.Table) *index.FinalIndex {
	n := t.DocCount()
	for _, docs := range t {
		idf := IDF(n, len(docs))
		for docID, p := range docs {
			p.Weight *= idf
			docs[docID] = p
		}
	}
	return index.NewFinalIndex(t)
}

// Options configures a merge run.
type Options struct {
	PartialDir string
	FinalPath  string
	// Concurrency is how many partial files are decoded at once.
	Concurrency int
	Metrics     *metrics.Metrics
}

// Result summarises a finished merge.
type Result struct {
	Partials  int
	Terms     int
	Documents int
	Duration  time.Duration
}

// Run reads every partial index in PartialDir in ascending sequence order,
// combines them, weights them and writes the final index to FinalPath.
// A corrupt partial file aborts the merge; partial files are left in place.
func Run(ctx context.Context, opts Options) (*index.FinalIndex, Result, error) {
	logger := slog.Default().With("component", "merger")
	start := time.Now()

	partials, err := segment.ListPartials(opts.PartialDir)
	if err != nil {
		return nil, Result{}, err
	}
	window := opts.Concurrency
	if window < 1 {
		window = 1
	}

	combined := make(index.Table)
	for lo := 0; lo < len(partials); lo += window {
		hi := min(lo+window, len(partials))
		tables, err := load(ctx, partials[lo:hi])
		if err != nil {
			return nil, Result{}, err
		}
		for i, t := range tables {
			Combine(combined, t)
			logger.Debug("partial index merged", "seq", partials[lo+i].Seq, "terms", len(t))
		}
	}

	final := ComputeTFIDF(combined)
	if err := segment.WriteFinal(opts.FinalPath, final); err != nil {
		return nil, Result{}, err
	}

	res := Result{
		Partials:  len(partials),
		Terms:     final.NumTerms(),
		Documents: final.DocCount(),
		Duration:  time.Since(start),
	}
	opts.Metrics.Merged(res.Duration, res.Terms)
	logger.Info("final index written",
		"path", opts.FinalPath,
		"partials", res.Partials,
		"terms", res.Terms,
		"documents", res.Documents,
		"duration", res.Duration.Round(time.Millisecond).String(),
	)
	return final, res, nil
}

// load decodes partials concurrently and returns them in input order.
func load(ctx context.Context, partials []segment.Partial) ([]index.Table, error) {
	tables := make([]index.Table, len(partials))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range partials {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := segment.ReadTable(p.Path)
			if err != nil {
				return fmt.Errorf("loading partial index %d: %w", p.Seq, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
