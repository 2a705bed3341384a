package rse

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"relseg/internal/models"
	"relseg/internal/rank"
)

// window is one candidate segment prior to global selection. doc is the
// document's position in the matrix, kept for deterministic tie-breaks.
type window struct {
	doc   int
	start int // absolute chunk index, inclusive
	end   int
	value float64
}

// Search finds the best non-overlapping segments across all documents in the
// matrix, subject to the preset's length and budget constraints.
//
// Selection is greedy by descending value. The exact optimum is weighted
// interval scheduling per document composed with a knapsack over the global
// chunk budget, which is NP-hard; greedy is the documented approximation and
// works well here because penalty subtraction makes weak chunks negative, so
// candidates cluster around a few dominant spans per document.
//
// Results are deterministic: ties in value break by document insertion
// order, then by lower start index, regardless of how many workers scored
// documents concurrently.
func Search(ctx context.Context, m rank.Matrix, p Preset) ([]models.Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	perDoc := make([][]window, len(m.Docs))
	g, gctx := errgroup.WithContext(ctx)
	for di := range m.Docs {
		di := di
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perDoc[di] = enumerate(di, m.Docs[di], p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// All-or-nothing: never return segments from a partial scan.
		return nil, err
	}

	var candidates []window
	for _, ws := range perDoc {
		candidates = append(candidates, ws...)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.value != b.value {
			return a.value > b.value
		}
		if a.doc != b.doc {
			return a.doc < b.doc
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end < b.end
	})

	claimed := make([][]bool, len(m.Docs))
	for di, dv := range m.Docs {
		claimed[di] = make([]bool, len(dv.Values))
	}

	var out []models.Segment
	total := 0
	for _, w := range candidates {
		if len(out) >= p.MaxSegments || total >= p.OverallMaxLength {
			break
		}
		length := w.end - w.start + 1
		if total+length > p.OverallMaxLength {
			continue // a shorter candidate may still fit
		}
		if overlaps(claimed[w.doc], m.Docs[w.doc].Start, w.start, w.end) {
			continue
		}
		claim(claimed[w.doc], m.Docs[w.doc].Start, w.start, w.end)
		total += length
		out = append(out, models.Segment{
			DocID: m.Docs[w.doc].DocID,
			Start: w.start,
			End:   w.end,
			Score: w.value,
		})
	}
	return out, nil
}

// enumerate lists every eligible window in one document. Each start index
// extends a running sum chunk by chunk, so this is O(n * MaxLength) overall.
// The running sum, unlike a prefix-sum subtraction, keeps windows over equal
// inputs bit-identical, so value ties actually reach the positional
// tie-breaks in Search.
//
// A window is eligible when its length is within MaxLength, its value is at
// least MinimumValue, and both its first and last chunk clear the per-chunk
// edge bar. Chunks below the bar may still sit in a window's interior,
// letting a segment span a low-signal chunk between two strong ones.
func enumerate(doc int, dv rank.DocValues, p Preset) []window {
	n := len(dv.Values)
	bar := p.edgeBar()

	var out []window
	for i := 0; i < n; i++ {
		if dv.Values[i] < bar {
			continue
		}
		limit := i + p.MaxLength
		if limit > n {
			limit = n
		}
		value := 0.0
		for j := i; j < limit; j++ {
			value += dv.Values[j]
			if dv.Values[j] < bar {
				continue
			}
			if value < p.MinimumValue {
				continue
			}
			out = append(out, window{
				doc:   doc,
				start: dv.Start + i,
				end:   dv.Start + j,
				value: value,
			})
		}
	}
	return out
}

func overlaps(claimed []bool, base, start, end int) bool {
	for i := start - base; i <= end-base; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func claim(claimed []bool, base, start, end int) {
	for i := start - base; i <= end-base; i++ {
		claimed[i] = true
	}
}
