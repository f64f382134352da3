package catalog

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
)

// skipIfNoPostgres skips the test unless TEST_POSTGRES_HOST points at a
// reachable database.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("skipping integration test: TEST_POSTGRES_HOST not set")
	}
	port, err := strconv.Atoi(envOrDefault("TEST_POSTGRES_PORT", "5432"))
	if err != nil {
		t.Fatalf("invalid TEST_POSTGRES_PORT: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, config.PostgresConfig{
		Host:            host,
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "corpussearch_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "corpussearch"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestCatalogRoundTrip(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	c := New(db.DB, uuid.NewString())
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	url := "https://example.com/" + uuid.NewString()
	t.Cleanup(func() { db.DB.Exec(`DELETE FROM documents WHERE url = $1`, url) })

	if err := c.RecordDocument(ctx, url, "deadbeef", indexer.StatusIndexed); err != nil {
		t.Fatal(err)
	}
	if err := c.AssignBatch(ctx, 7, []string{url}); err != nil {
		t.Fatal(err)
	}
	doc, err := c.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != indexer.StatusIndexed || doc.BatchSeq == nil || *doc.BatchSeq != 7 || doc.IndexedAt == nil {
		t.Errorf("document = %+v", doc)
	}

	counts, err := c.StatusCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[indexer.StatusIndexed] < 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCatalogDuplicateKeepsIndexedRow(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	c := New(db.DB, uuid.NewString())
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	url := "https://example.com/" + uuid.NewString()
	t.Cleanup(func() { db.DB.Exec(`DELETE FROM documents WHERE url = $1`, url) })

	if err := c.RecordDocument(ctx, url, "deadbeef", indexer.StatusIndexed); err != nil {
		t.Fatal(err)
	}
	if err := c.AssignBatch(ctx, 7, []string{url}); err != nil {
		t.Fatal(err)
	}
	if err := c.RecordDocument(ctx, url, "cafebabe", indexer.StatusDuplicate); err != nil {
		t.Fatal(err)
	}
	doc, err := c.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != indexer.StatusIndexed || doc.BatchSeq == nil || *doc.BatchSeq != 7 || doc.IndexedAt == nil {
		t.Errorf("document = %+v", doc)
	}

	next := New(db.DB, uuid.NewString())
	if err := next.RecordDocument(ctx, url, "cafebabe", indexer.StatusDuplicate); err != nil {
		t.Fatal(err)
	}
	doc, err = next.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != indexer.StatusDuplicate || doc.BatchSeq != nil {
		t.Errorf("new run should overwrite: document = %+v", doc)
	}
}
