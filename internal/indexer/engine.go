package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Sequence hands out partial index sequence numbers starting at 0. One
// Sequence is shared by every Builder of a run so numbers stay unique.
type Sequence struct {
	next atomic.Int64
}

// Next reserves the next sequence number.
func (s *Sequence) Next() int {
	return int(s.next.Add(1) - 1)
}

// Issued returns how many sequence numbers have been handed out.
func (s *Sequence) Issued() int {
	return int(s.next.Load())
}

// FlushFunc is called after a partial index file has been written with the
// ids of the documents it holds.
type FlushFunc func(ctx context.Context, seq int, docIDs []string)

// Builder owns one in-memory partial index and flushes it to a numbered file
// after every BatchSize indexed documents.
type Builder struct {
	memIndex *index.PartialIndex
	cfg      config.IndexerConfig
	seq      *Sequence
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pending  []string
	onFlush  FlushFunc
	flushed  int
}

// NewBuilder creates a Builder writing into cfg.PartialDir. m may be nil.
func NewBuilder(cfg config.IndexerConfig, seq *Sequence, m *metrics.Metrics) *Builder {
	return &Builder{
		memIndex: index.NewPartialIndex(),
		cfg:      cfg,
		seq:      seq,
		metrics:  m,
		logger:   slog.Default().With("component", "index-builder"),
		pending:  make([]string, 0, cfg.BatchSize),
	}
}

// OnFlush registers fn to be called after every successful flush.
func (b *Builder) OnFlush(fn FlushFunc) {
	b.onFlush = fn
}

// Add counts the tokens of one indexed document. Reaching the batch size
// triggers a synchronous flush.
func (b *Builder) Add(ctx context.Context, docID string, tokens []tokenizer.Token) error {
	b.memIndex.AddDocument(docID, tokens)
	b.pending = append(b.pending, docID)
	b.logger.Debug("document indexed in memory",
		"doc_id", docID,
		"token_count", len(tokens),
		"batch_docs", b.memIndex.DocCount(),
	)
	if b.memIndex.DocCount() >= b.cfg.BatchSize {
		if err := b.Flush(ctx); err != nil {
			return fmt.Errorf("flushing partial index: %w", err)
		}
	}
	return nil
}

// Flush writes the current batch, if any, and clears the in-memory index.
func (b *Builder) Flush(ctx context.Context) error {
	docs := b.memIndex.DocCount()
	if docs == 0 {
		return nil
	}
	seq := b.seq.Next()
	path, err := segment.WritePartial(b.cfg.PartialDir, seq, b.memIndex.Snapshot(b.cfg.StorePositions))
	b.metrics.Flushed(docs, err)
	if err != nil {
		return err
	}
	b.logger.Info("partial index flushed",
		"seq", seq,
		"path", path,
		"docs", docs,
		"terms", b.memIndex.Len(),
	)
	if b.onFlush != nil {
		b.onFlush(ctx, seq, b.pending)
	}
	b.memIndex.Reset()
	b.pending = make([]string, 0, b.cfg.BatchSize)
	b.flushed++
	return nil
}

// Flushed returns the number of partial files this Builder has written.
func (b *Builder) Flushed() int {
	return b.flushed
}

// Buffered returns the number of documents waiting for the next flush.
func (b *Builder) Buffered() int {
	return b.memIndex.DocCount()
}
