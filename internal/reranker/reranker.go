package reranker

import (
	"context"

	"relseg/internal/models"
)

// Reranker reorders candidates for one query and assigns each a relevance
// score in [0,1].
type Reranker interface {
	// Rerank returns the candidates reordered by descending relevance.
	// texts[i] is the scored text for candidates[i]; both slices must have
	// equal length.
	Rerank(ctx context.Context, query string, candidates []models.Candidate, texts []string) ([]models.Candidate, error)
	// NeedsCalibration reports whether scores cluster near the extremes
	// and must pass through the calibration transform before absolute
	// values are summed. True for cross-encoder rerankers; false for
	// sources that already emit well-spread similarity.
	NeedsCalibration() bool
}

// Noop keeps the incoming order and scores. Used when retrieval similarity
// (plain cosine) is already a usable absolute relevance signal.
type Noop struct{}

func (Noop) Rerank(ctx context.Context, query string, candidates []models.Candidate, texts []string) ([]models.Candidate, error) {
	return candidates, nil
}

func (Noop) NeedsCalibration() bool { return false }
