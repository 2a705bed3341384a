package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a brute-force cosine store for tests and small corpora.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemory() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Upsert(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		replaced := false
		for i := range s.items {
			if s.items[i].DocID == it.DocID && s.items[i].Index == it.Index {
				s.items[i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			s.items = append(s.items, it)
		}
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]Result, 0, len(s.items))
	for _, it := range s.items {
		if len(it.Vector) != len(query) {
			continue
		}
		results = append(results, Result{
			DocID: it.DocID,
			Index: it.Index,
			Score: cosine(query, it.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) DeleteDoc(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.DocID != docID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
