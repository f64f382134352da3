package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNilCatalogIsNoop(t *testing.T) {
	var c *Catalog
	ctx := context.Background()
	if err := c.EnsureSchema(ctx); err != nil {
		t.Errorf("EnsureSchema: %v", err)
	}
	if err := c.RecordDocument(ctx, "https://example.com/", "abc", "indexed"); err != nil {
		t.Errorf("RecordDocument: %v", err)
	}
	if err := c.AssignBatch(ctx, 0, []string{"https://example.com/"}); err != nil {
		t.Errorf("AssignBatch: %v", err)
	}
}

func TestGetDocumentRequiresURL(t *testing.T) {
	h := NewHandler(New(nil, "run"))
	rec := httptest.NewRecorder()
	h.GetDocument(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
