package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"relseg/internal/llm"
)

// CachedEmbedder decorates an Embedder with an LRU cache keyed by
// (model, input text). Query strings repeat often across calls, and
// embedding them is the slowest step before scoring.
type CachedEmbedder struct {
	inner llm.Embedder
	cache *lru.Cache[string, []float32]
}

func New(inner llm.Embedder, size int) (*CachedEmbedder, error) {
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: c}, nil
}

func (e *CachedEmbedder) Embeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	var missIdx []int
	var miss []string
	for i, in := range inputs {
		if v, ok := e.cache.Get(key(model, in)); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		miss = append(miss, in)
	}
	if len(miss) == 0 {
		return out, nil
	}
	vecs, err := e.inner.Embeddings(ctx, model, miss)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		e.cache.Add(key(model, inputs[i]), vecs[j])
	}
	return out, nil
}

func key(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}
