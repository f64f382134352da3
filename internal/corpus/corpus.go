// Package corpus reads pre-fetched web documents from a corpus directory.
// The directory holds one subdirectory per site, each containing one JSON
// record per fetched page.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Record is one fetched page as stored on disk.
type Record struct {
	URL      string `json:"url"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

// Entry is delivered to the Walk callback for every record file. Err is set
// when the file could not be read or decoded; Record is then zero.
type Entry struct {
	Path   string
	Record Record
	Err    error
}

// Walk visits every *.json record under dir in lexical order of subdirectory
// and file name. Unreadable files are reported through Entry.Err rather than
// aborting. Walk stops early when fn returns an error or ctx is cancelled.
func Walk(ctx context.Context, dir string, fn func(Entry) error) error {
	logger := slog.Default().With("component", "corpus")
	sites, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}
	for _, site := range sites {
		if !site.IsDir() {
			continue
		}
		sitePath := filepath.Join(dir, site.Name())
		files, err := os.ReadDir(sitePath)
		if err != nil {
			logger.Warn("skipping unreadable corpus subdirectory", "path", sitePath, "error", err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(sitePath, f.Name())
			rec, err := ReadRecord(path)
			if err := fn(Entry{Path: path, Record: rec, Err: err}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadRecord decodes a single record file.
func ReadRecord(path string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("reading record %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding record %s: %w", path, err)
	}
	return rec, nil
}

// Count returns the number of record files under dir, for progress reporting.
func Count(dir string) (int, error) {
	sites, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}
	total := 0
	for _, site := range sites {
		if !site.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, site.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
				total++
			}
		}
	}
	return total, nil
}
