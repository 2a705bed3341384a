package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore keeps embeddings in an in-process chromem-go collection,
// optionally persisted to disk.
type ChromemStore struct {
	coll *chromem.Collection
}

const collectionName = "chunks"

// NewChromem opens (or creates) a persistent store at path. An empty path
// keeps everything in memory.
func NewChromem(path string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, err
		}
	}
	// Embeddings are always supplied by the caller, so no embedding func.
	coll, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, err
	}
	return &ChromemStore{coll: coll}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(items))
	for _, it := range items {
		docs = append(docs, chromem.Document{
			ID: chunkKey(it.DocID, it.Index),
			Metadata: map[string]string{
				"doc_id": it.DocID,
				"ord":    strconv.Itoa(it.Index),
			},
			Embedding: it.Vector,
			Content:   it.Text,
		})
	}
	return s.coll.AddDocuments(ctx, docs, runtime.NumCPU())
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}
	if n := s.coll.Count(); k > n {
		if n == 0 {
			return nil, nil
		}
		k = n
	}
	res, err := s.coll.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(res))
	for _, r := range res {
		ord, err := strconv.Atoi(r.Metadata["ord"])
		if err != nil {
			return nil, fmt.Errorf("vectorstore: bad ord metadata on %q: %w", r.ID, err)
		}
		out = append(out, Result{
			DocID: r.Metadata["doc_id"],
			Index: ord,
			Score: float64(r.Similarity),
		})
	}
	return out, nil
}

func (s *ChromemStore) DeleteDoc(ctx context.Context, docID string) error {
	return s.coll.Delete(ctx, map[string]string{"doc_id": docID}, nil)
}

func chunkKey(docID string, index int) string {
	return docID + ":" + strconv.Itoa(index)
}
