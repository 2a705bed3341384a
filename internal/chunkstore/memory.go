package chunkstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"relseg/internal/models"
)

// MemoryStore is an in-memory ChunkStore for tests and small corpora.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[int]models.Chunk
}

func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[int]models.Chunk)}
}

func (s *MemoryStore) Put(ctx context.Context, chunks []models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		doc, ok := s.docs[c.DocID]
		if !ok {
			doc = make(map[int]models.Chunk)
			s.docs[c.DocID] = doc
		}
		doc[c.Index] = c
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, docID string, index int) (models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.docs[docID][index]
	if !ok {
		return models.Chunk{}, fmt.Errorf("%w: %s[%d]", ErrNotFound, docID, index)
	}
	return c, nil
}

func (s *MemoryStore) GetRange(ctx context.Context, docID string, start, end int) ([]models.Chunk, error) {
	if start > end {
		return nil, fmt.Errorf("chunkstore: invalid range [%d,%d]", start, end)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chunk, 0, end-start+1)
	for i := start; i <= end; i++ {
		c, ok := s.docs[docID][i]
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]", ErrNotFound, docID, i)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) DocLen(ctx context.Context, docID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := -1
	for i := range s.docs[docID] {
		if i > max {
			max = i
		}
	}
	return max + 1, nil
}

func (s *MemoryStore) DeleteDoc(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	return nil
}
