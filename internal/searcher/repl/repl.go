// Package repl runs the interactive query loop of the searcher command.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
)

const (
	prompt       = "\nEnter search query (or type 'exit' to quit): "
	exitSentinel = "exit"
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*executor.SearchResult, error)
}

// Run reads one query per line from in and prints ranked results to out
// until the exit sentinel, end of input, or ctx is done.
func Run(ctx context.Context, in io.Reader, out io.Writer, s Searcher, limit int) error {
	scanner := bufio.NewScanner(in)
	for {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		query := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(query), exitSentinel) {
			return nil
		}
		if err := Answer(ctx, out, s, query, limit); err != nil {
			return err
		}
	}
}

// Answer executes a single query and prints its results.
func Answer(ctx context.Context, out io.Writer, s Searcher, query string, limit int) error {
	result, err := s.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}
	return Print(out, result)
}

// Print writes result in the format of the interactive loop.
func Print(out io.Writer, result *executor.SearchResult) error {
	w := bufio.NewWriter(out)
	if len(result.Results) == 0 {
		fmt.Fprintln(w, "\nNo results found.")
	} else {
		if result.Corrected {
			fmt.Fprintf(w, "\nShowing results for: %s\n", strings.Join(result.Terms, " "))
		}
		fmt.Fprintln(w, "\nTop Search Results:")
		for i, doc := range result.Results {
			fmt.Fprintf(w, "%d. %s (Score: %.4f)\n", i+1, doc.DocID, doc.Score)
		}
	}
	fmt.Fprintf(w, "Search completed in %.2f ms (%d matching documents)\n", result.LatencyMS, result.TotalHits)
	return w.Flush()
}
