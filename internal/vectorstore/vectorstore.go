package vectorstore

import "context"

// Item is a single chunk embedding to store.
type Item struct {
	DocID  string
	Index  int
	Vector []float32
	Text   string
}

// Result is one nearest-neighbor hit. Score is cosine similarity, higher is
// better; it passes to scoring uncalibrated.
type Result struct {
	DocID string
	Index int
	Score float64
}

// VectorStore defines the minimal operations semantic retrieval needs.
type VectorStore interface {
	Upsert(ctx context.Context, items []Item) error
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	DeleteDoc(ctx context.Context, docID string) error
}
