package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Handler serves read-only catalog lookups.
type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{
		catalog: c,
		logger:  slog.Default().With("component", "catalog-handler"),
	}
}

// GetDocument handles GET /api/v1/documents?url=...
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'url' is required"})
		return
	}
	doc, err := h.catalog.Get(r.Context(), url)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch document", "url", url, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch document"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Stats handles GET /api/v1/documents/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.catalog.StatusCounts(r.Context())
	if err != nil {
		h.logger.Error("failed to count documents", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count documents"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": counts})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
