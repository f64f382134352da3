// Package segment reads and writes the on-disk index files: numbered partial
// index files produced per batch and the single final index file.
package segment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
)

const (
	partialPrefix = "partial_index_"
	partialSuffix = ".json"
)

// PartialName returns the file name of the partial index with sequence seq.
func PartialName(seq int) string {
	return fmt.Sprintf("%s%d%s", partialPrefix, seq, partialSuffix)
}

// WritePartial writes one flushed batch into dir and returns the file path.
// The batch is written to a .tmp file first and renamed on success.
func WritePartial(dir string, seq int, t index.Table) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating partial index directory: %w", err)
	}
	path := filepath.Join(dir, PartialName(seq))
	if err := writeJSONAtomic(path, t); err != nil {
		return "", fmt.Errorf("writing partial index %d: %w", seq, err)
	}
	return path, nil
}

// WriteFinal persists the merged index as a single file at path.
func WriteFinal(path string, f *index.FinalIndex) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating final index directory: %w", err)
		}
	}
	if err := writeJSONAtomic(path, f.Table()); err != nil {
		return fmt.Errorf("writing final index: %w", err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	w := bufio.NewWriterSize(f, 1<<20)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
