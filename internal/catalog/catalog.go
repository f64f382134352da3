// Package catalog keeps a PostgreSQL ledger of every corpus record an
// indexing run looked at: its canonical URL, content hash, outcome and the
// partial index batch it landed in.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	url          TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	run_id       TEXT NOT NULL,
	batch_seq    INTEGER,
	indexed_at   TIMESTAMPTZ,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status);
`

// Document is one catalog row.
type Document struct {
	URL         string     `json:"url"`
	ContentHash string     `json:"content_hash"`
	Status      string     `json:"status"`
	RunID       string     `json:"run_id"`
	BatchSeq    *int       `json:"batch_seq,omitempty"`
	IndexedAt   *time.Time `json:"indexed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Catalog writes document statuses for one run and implements
// indexer.Recorder. A nil *Catalog accepts every write and records nothing.
type Catalog struct {
	db     *sql.DB
	runID  string
	logger *slog.Logger
}

func New(db *sql.DB, runID string) *Catalog {
	return &Catalog{
		db:     db,
		runID:  runID,
		logger: slog.Default().With("component", "catalog"),
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

// RecordDocument upserts the outcome of one record. Within a run the first
// indexed outcome for a URL is final; later duplicates leave it untouched.
func (c *Catalog) RecordDocument(ctx context.Context, docID, contentHash, status string) error {
	if c == nil {
		return nil
	}
	var indexedAt sql.NullTime
	if status == indexer.StatusIndexed {
		indexedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (url, content_hash, status, run_id, batch_seq, indexed_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULL, $5, now())
		 ON CONFLICT (url) DO UPDATE
		 SET content_hash = EXCLUDED.content_hash,
		     status = EXCLUDED.status,
		     run_id = EXCLUDED.run_id,
		     batch_seq = NULL,
		     indexed_at = EXCLUDED.indexed_at,
		     updated_at = now()
		 WHERE documents.run_id <> EXCLUDED.run_id
		    OR documents.status <> 'indexed'`,
		docID, contentHash, status, c.runID, indexedAt,
	)
	if err != nil {
		return fmt.Errorf("recording document %s: %w", docID, err)
	}
	return nil
}

// AssignBatch stamps the partial index sequence number onto documents.
func (c *Catalog) AssignBatch(ctx context.Context, seq int, docIDs []string) error {
	if c == nil || len(docIDs) == 0 {
		return nil
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE documents SET batch_seq = $1, updated_at = now()
		 WHERE run_id = $2 AND url = ANY($3)`,
		seq, c.runID, pq.Array(docIDs),
	)
	if err != nil {
		return fmt.Errorf("assigning batch %d: %w", seq, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		c.logger.Debug("batch assigned", "seq", seq, "documents", n)
	}
	return nil
}

// Get returns the catalog row for url, or sql.ErrNoRows.
func (c *Catalog) Get(ctx context.Context, url string) (*Document, error) {
	var d Document
	var batch sql.NullInt64
	var indexedAt sql.NullTime
	err := c.db.QueryRowContext(ctx,
		`SELECT url, content_hash, status, run_id, batch_seq, indexed_at, updated_at
		 FROM documents WHERE url = $1`, url,
	).Scan(&d.URL, &d.ContentHash, &d.Status, &d.RunID, &batch, &indexedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if batch.Valid {
		seq := int(batch.Int64)
		d.BatchSeq = &seq
	}
	if indexedAt.Valid {
		d.IndexedAt = &indexedAt.Time
	}
	return &d, nil
}

// StatusCounts returns the number of documents per status.
func (c *Catalog) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting document statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

var _ indexer.Recorder = (*Catalog)(nil)
