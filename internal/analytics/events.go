// Package analytics collects search events, aggregates them into query
// statistics and reports on the contents of the final index.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventZeroResult EventType = "zero_result"
	EventIndexBuilt EventType = "index_built"
)

// SearchEvent describes one answered query.
type SearchEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Terms      []string  `json:"terms"`
	Corrected  bool      `json:"corrected"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  float64   `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// IndexCompleteEvent is published by the indexer after the final index has
// been written. Searchers reload on receipt.
type IndexCompleteEvent struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	FinalPath  string    `json:"final_path"`
	Terms      int       `json:"terms"`
	Documents  int       `json:"documents"`
	Partials   int       `json:"partials"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSearchEvent classifies a search outcome into an event.
func NewSearchEvent(query string, terms []string, corrected bool, totalHits, returned int, latency time.Duration, cacheHit bool) SearchEvent {
	eventType := EventSearch
	switch {
	case totalHits == 0:
		eventType = EventZeroResult
	case cacheHit:
		eventType = EventCacheHit
	}
	return SearchEvent{
		Type:      eventType,
		Query:     query,
		Terms:     terms,
		Corrected: corrected,
		TotalHits: totalHits,
		Returned:  returned,
		LatencyMs: float64(latency.Microseconds()) / 1000,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}
