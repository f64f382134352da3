package analytics

import (
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/segment"
)

// IndexReport summarises the contents of a final index file.
type IndexReport struct {
	Path            string `json:"path"`
	UniqueTerms     int    `json:"unique_terms"`
	UniqueDocuments int    `json:"unique_documents"`
}

// Report reads the final index at path. A missing file is returned as
// ErrIndexNotFound and a malformed one as ErrCorruptIndex.
func Report(path string) (*IndexReport, error) {
	idx, err := segment.ReadFinal(path)
	if err != nil {
		return nil, err
	}
	return ReportFor(path, idx), nil
}

// ReportFor summarises an index already in memory.
func ReportFor(path string, idx *index.FinalIndex) *IndexReport {
	return &IndexReport{
		Path:            path,
		UniqueTerms:     idx.NumTerms(),
		UniqueDocuments: idx.DocCount(),
	}
}

// WriteText prints the report in human-readable form.
func (r *IndexReport) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Index: %s\nUnique tokens: %d\nUnique documents: %d\n",
		r.Path, r.UniqueTerms, r.UniqueDocuments)
	return err
}
