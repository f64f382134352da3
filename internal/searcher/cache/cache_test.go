package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemStore(), config.Default().Redis, nil)
	ctx := context.Background()
	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return &executor.SearchResult{Query: "cats", TotalHits: 3}, nil
	}

	res, hit, err := c.GetOrCompute(ctx, "cats", 10, 1, compute)
	if err != nil || hit || res.TotalHits != 3 {
		t.Fatalf("first call: %+v hit=%v err=%v", res, hit, err)
	}
	res, hit, err = c.GetOrCompute(ctx, "CATS", 10, 1, compute)
	if err != nil || !hit || res.TotalHits != 3 {
		t.Fatalf("second call: %+v hit=%v err=%v", res, hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	if _, hit, _ = c.GetOrCompute(ctx, "cats", 10, 2, compute); hit {
		t.Error("new generation should miss")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 2 {
		t.Errorf("stats = %d/%d, want 1/2", hits, misses)
	}
}

func TestGetOrComputeError(t *testing.T) {
	c := New(newMemStore(), config.Default().Redis, nil)
	want := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), "q", 10, 1, func() (*executor.SearchResult, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Errorf("got %v", err)
	}
}

func TestSingleflightCollapsesMisses(t *testing.T) {
	c := New(newMemStore(), config.Default().Redis, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return &executor.SearchResult{Query: "q"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.GetOrCompute(context.Background(), "q", 10, 1, compute); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("compute calls = %d, want 1", got)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, config.Default().Redis, nil)
	ctx := context.Background()
	c.Set(ctx, BuildKey("a", 10, 1), &executor.SearchResult{})
	c.Set(ctx, BuildKey("b", 10, 1), &executor.SearchResult{})
	store.data["other"] = []byte("keep")

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if len(store.data) != 1 {
		t.Errorf("remaining keys = %d, want 1", len(store.data))
	}
}

func TestBuildKeyNormalizes(t *testing.T) {
	if BuildKey("The Cats", 10, 1) != BuildKey("cats", 10, 1) {
		t.Error("equivalent queries should share a key")
	}
	if BuildKey("cats", 10, 1) == BuildKey("cats", 5, 1) {
		t.Error("limit should be part of the key")
	}
}
