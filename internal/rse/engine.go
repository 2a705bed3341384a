package rse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"relseg/internal/chunkstore"
	"relseg/internal/llm"
	"relseg/internal/models"
	"relseg/internal/rank"
	"relseg/internal/reranker"
	"relseg/internal/vectorstore"
)

// ErrChunkRange marks a candidate list referencing a chunk index outside the
// document's known range. That is a data-integrity problem on the caller's
// side; dropping the chunk silently would change scores unpredictably.
var ErrChunkRange = errors.New("rse: chunk index out of document range")

// Engine runs one multi-query retrieval call end to end: embed, search,
// optionally rerank and calibrate, build the relevance matrix, select
// segments, assemble content.
//
// All collaborator I/O happens before or after the scoring core. Failures
// from collaborators propagate unchanged; the engine has no way to recover
// missing input data.
type Engine struct {
	Embedder llm.Embedder
	Model    string
	Vectors  vectorstore.VectorStore
	Reranker reranker.Reranker // nil disables reranking
	Chunks   chunkstore.ChunkStore

	Aggregator rank.Aggregator // nil defaults to max
	Calibrator rank.Calibrator // nil defaults to Beta(0.4, 0.4)
	TopK       int             // candidates per query, default 50
	Log        *log.Logger
}

// Options selects the preset for one call. Preset, when set, bypasses the
// name lookup.
type Options struct {
	PresetName string
	Preset     *Preset
}

func (e *Engine) Query(ctx context.Context, queries []string, opt Options) ([]models.Segment, error) {
	if len(queries) == 0 {
		return nil, errors.New("rse: at least one query required")
	}
	// Resolve configuration before any scoring or network work.
	var preset Preset
	if opt.Preset != nil {
		preset = *opt.Preset
	} else {
		var err error
		preset, err = ResolvePreset(opt.PresetName)
		if err != nil {
			return nil, err
		}
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}

	agg := e.Aggregator
	if agg == nil {
		agg = rank.MaxAggregator{}
	}
	cal := e.Calibrator
	if cal == nil {
		cal = rank.DefaultCalibrator()
	}
	topK := e.TopK
	if topK <= 0 {
		topK = 50
	}

	vecs, err := e.Embedder.Embeddings(ctx, e.Model, queries)
	if err != nil {
		return nil, err
	}

	docLens := make(map[string]int)
	lists := make([][]models.Candidate, len(queries))
	for qi, query := range queries {
		candidates, err := e.Vectors.Search(ctx, vecs[qi], topK)
		if err != nil {
			return nil, err
		}
		list := make([]models.Candidate, 0, len(candidates))
		for _, r := range candidates {
			list = append(list, models.Candidate{DocID: r.DocID, Index: r.Index, Score: r.Score})
		}
		if err := e.checkRanges(ctx, list, docLens); err != nil {
			return nil, err
		}
		if e.Reranker != nil {
			list, err = e.rerank(ctx, query, list, cal)
			if err != nil {
				return nil, err
			}
		}
		if e.Log != nil {
			e.Log.Debug("retrieved candidates", "query", qi, "count", len(list))
		}
		lists[qi] = list
	}

	matrix := rank.BuildMatrix(lists, agg, preset.IrrelevantChunkPenalty)
	segments, err := Search(ctx, matrix, preset)
	if err != nil {
		return nil, err
	}
	if e.Log != nil {
		e.Log.Debug("segment search done", "docs", len(matrix.Docs), "segments", len(segments))
	}
	return Assemble(ctx, e.Chunks, segments)
}

// rerank feeds candidate texts through the reranker and calibrates the
// returned scores when the source needs it.
func (e *Engine) rerank(ctx context.Context, query string, list []models.Candidate, cal rank.Calibrator) ([]models.Candidate, error) {
	texts := make([]string, len(list))
	for i, c := range list {
		chunk, err := e.Chunks.Get(ctx, c.DocID, c.Index)
		if err != nil {
			return nil, err
		}
		if chunk.Header != "" {
			texts[i] = chunk.Header + "\n\n" + chunk.Text
		} else {
			texts[i] = chunk.Text
		}
	}
	out, err := e.Reranker.Rerank(ctx, query, list, texts)
	if err != nil {
		return nil, err
	}
	if e.Reranker.NeedsCalibration() {
		for i := range out {
			out[i].Score = cal.Calibrate(out[i].Score)
		}
	}
	return out, nil
}

func (e *Engine) checkRanges(ctx context.Context, list []models.Candidate, docLens map[string]int) error {
	for _, c := range list {
		n, ok := docLens[c.DocID]
		if !ok {
			var err error
			n, err = e.Chunks.DocLen(ctx, c.DocID)
			if err != nil {
				return err
			}
			docLens[c.DocID] = n
		}
		if c.Index < 0 || c.Index >= n {
			return fmt.Errorf("%w: %s[%d] (document has %d chunks)", ErrChunkRange, c.DocID, c.Index, n)
		}
	}
	return nil
}
