// Package indexer turns corpus records into partial index files. A Pipeline
// normalizes, extracts, deduplicates and tokenizes each record and hands the
// survivors to a Builder, which bounds memory to one batch of documents.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/extract"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/urlnorm"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Document statuses reported to a Recorder.
const (
	StatusIndexed      = "indexed"
	StatusDuplicate    = "duplicate"
	StatusUnreadable   = "unreadable"
	StatusMalformedURL = "malformed_url"
)

// Recorder receives per-document outcomes, e.g. to keep a catalog of what
// a run indexed. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordDocument(ctx context.Context, docID, contentHash, status string) error
	AssignBatch(ctx context.Context, seq int, docIDs []string) error
}

// Stats counts record outcomes for one run.
type Stats struct {
	Scanned    atomic.Int64
	Indexed    atomic.Int64
	Duplicates atomic.Int64
	Skipped    atomic.Int64
}

// RunContext is the state owned by a single build invocation. Its dedup set
// and counters end with the run.
type RunContext struct {
	ID      uuid.UUID
	Started time.Time
	Dedup   *dedup.Set
	Stats   *Stats
	Seq     *Sequence
}

func NewRunContext() *RunContext {
	return &RunContext{
		ID:      uuid.New(),
		Started: time.Now(),
		Dedup:   dedup.NewSet(),
		Stats:   &Stats{},
		Seq:     &Sequence{},
	}
}

// Pipeline processes corpus entries for one Builder.
type Pipeline struct {
	run           *RunContext
	builder       *Builder
	weights       extract.Weights
	recorder      Recorder
	metrics       *metrics.Metrics
	progressEvery int64
	logger        *slog.Logger
}

// NewPipeline wires a Builder into run. recorder and m may be nil.
func NewPipeline(run *RunContext, builder *Builder, recorder Recorder, m *metrics.Metrics) *Pipeline {
	p := &Pipeline{
		run:           run,
		builder:       builder,
		weights:       extract.DefaultWeights,
		recorder:      recorder,
		metrics:       m,
		progressEvery: int64(builder.cfg.ProgressEvery),
		logger:        slog.Default().With("component", "indexer", "run_id", run.ID.String()),
	}
	if recorder != nil {
		builder.OnFlush(func(ctx context.Context, seq int, docIDs []string) {
			if err := recorder.AssignBatch(ctx, seq, docIDs); err != nil {
				p.logger.Warn("recording batch assignment failed", "seq", seq, "error", err)
			}
		})
	}
	return p
}

// Process handles one corpus entry. Unreadable records, malformed URLs and
// duplicate content are counted and skipped; only a failed flush is returned
// as an error.
func (p *Pipeline) Process(ctx context.Context, entry corpus.Entry) error {
	scanned := p.run.Stats.Scanned.Add(1)
	defer p.maybeReportProgress(scanned)

	if entry.Err != nil {
		p.skip(ctx, entry.Path, StatusUnreadable, entry.Err)
		return nil
	}
	docID, err := urlnorm.Normalize(entry.Record.URL)
	if err != nil {
		p.skip(ctx, entry.Path, StatusMalformedURL, err)
		return nil
	}
	fields, err := extract.FromHTML(entry.Record.Content)
	if err != nil {
		p.skip(ctx, docID, StatusUnreadable, err)
		return nil
	}
	text := fields.Weighted(p.weights)

	fresh, hash := p.run.Dedup.Check(text)
	if !fresh {
		p.run.Stats.Duplicates.Add(1)
		p.metrics.DocProcessed(metrics.OutcomeDuplicate)
		p.logger.Debug("duplicate content skipped", "doc_id", docID, "hash", hash.String())
		p.record(ctx, docID, hash.String(), StatusDuplicate)
		return nil
	}

	if err := p.builder.Add(ctx, docID, tokenizer.Tokenize(text)); err != nil {
		return fmt.Errorf("indexing %s: %w", docID, err)
	}
	p.run.Stats.Indexed.Add(1)
	p.metrics.DocProcessed(metrics.OutcomeIndexed)
	p.record(ctx, docID, hash.String(), StatusIndexed)
	return nil
}

// Flush writes the remaining partial batch, even when it is smaller than the
// batch size.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.builder.Flush(ctx)
}

func (p *Pipeline) skip(ctx context.Context, key, status string, err error) {
	p.run.Stats.Skipped.Add(1)
	p.metrics.DocProcessed(metrics.OutcomeSkipped)
	p.logger.Warn("record skipped", "record", key, "reason", status, "error", err)
	p.record(ctx, key, "", status)
}

func (p *Pipeline) record(ctx context.Context, docID, hash, status string) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordDocument(ctx, docID, hash, status); err != nil {
		p.logger.Warn("recording document status failed", "doc_id", docID, "error", err)
	}
}

func (p *Pipeline) maybeReportProgress(scanned int64) {
	if p.progressEvery <= 0 || scanned%p.progressEvery != 0 {
		return
	}
	s := p.run.Stats
	p.logger.Info("indexing progress",
		"scanned", scanned,
		"indexed", s.Indexed.Load(),
		"duplicates", s.Duplicates.Load(),
		"skipped", s.Skipped.Load(),
		"partials", p.run.Seq.Issued(),
		"elapsed", time.Since(p.run.Started).Round(time.Millisecond).String(),
	)
}
