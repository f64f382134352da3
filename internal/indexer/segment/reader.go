package segment

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// Partial locates one partial index file.
type Partial struct {
	Seq  int
	Path string
}

// ListPartials returns the partial index files in dir in ascending sequence
// order. A missing directory yields no partials.
func ListPartials(dir string) ([]Partial, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading partial index directory: %w", err)
	}
	partials := make([]Partial, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		seq, ok := parseSeq(entry.Name())
		if !ok {
			continue
		}
		partials = append(partials, Partial{Seq: seq, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(partials, func(i, j int) bool {
		return partials[i].Seq < partials[j].Seq
	})
	return partials, nil
}

// RemovePartials deletes every partial index file in dir and returns how many
// were removed.
func RemovePartials(dir string) (int, error) {
	partials, err := ListPartials(dir)
	if err != nil {
		return 0, err
	}
	for _, p := range partials {
		if err := os.Remove(p.Path); err != nil {
			return 0, fmt.Errorf("removing stale partial index: %w", err)
		}
	}
	return len(partials), nil
}

// ReadTable decodes a partial or final index file. Decoder failures are
// reported as ErrCorruptIndex.
func ReadTable(path string) (index.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var t index.Table
	if err := json.NewDecoder(bufio.NewReaderSize(f, 1<<20)).Decode(&t); err != nil {
		return nil, apperrors.Corruptf(path, err)
	}
	if t == nil {
		t = index.Table{}
	}
	return t, nil
}

// ReadFinal loads the final index at path. A missing file returns
// ErrIndexNotFound; callers serving queries treat that as an empty index.
func ReadFinal(path string) (*index.FinalIndex, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return index.NewFinalIndex(t), nil
}

func parseSeq(name string) (int, bool) {
	if !strings.HasPrefix(name, partialPrefix) || !strings.HasSuffix(name, partialSuffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, partialPrefix), partialSuffix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
