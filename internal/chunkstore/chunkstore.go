package chunkstore

import (
	"context"
	"errors"

	"relseg/internal/models"
)

var ErrNotFound = errors.New("chunkstore: chunk not found")

// ChunkStore holds chunk text and headers, keyed by (docID, index).
// Segment assembly reads ranges from it; the core never writes during a
// query call.
type ChunkStore interface {
	// Put inserts or replaces chunks. Chunks without an ID get one.
	Put(ctx context.Context, chunks []models.Chunk) error
	Get(ctx context.Context, docID string, index int) (models.Chunk, error)
	// GetRange returns chunks with indices in [start, end], in index order.
	// Any missing index in the range is an error: segment content must
	// never silently skip a chunk.
	GetRange(ctx context.Context, docID string, start, end int) ([]models.Chunk, error)
	// DocLen reports how many chunks the document has (max index + 1),
	// 0 when the document is unknown.
	DocLen(ctx context.Context, docID string) (int, error)
	DeleteDoc(ctx context.Context, docID string) error
}
