package rank

import (
	"relseg/internal/models"
)

// DocValues is one document's relevance values over the chunk index range
// touched by retrieval. Values[i] belongs to chunk index Start+i. Positions
// no query returned are interpolated as score 0 before the penalty is
// applied, so a low-signal chunk between two strong ones can still be
// bridged by segment search.
type DocValues struct {
	DocID  string
	Start  int
	Values []float64
}

func (d DocValues) End() int { return d.Start + len(d.Values) - 1 }

// Matrix holds per-document relevance values for one query call. Docs keep
// the order in which retrieval first returned them; segment search uses that
// order as a tie-break, so it must be stable.
type Matrix struct {
	Docs []DocValues
}

// BuildMatrix combines Q per-query candidate lists into one relevance value
// per chunk. Scores are aggregated across queries (missing entries count as
// 0), then penalty is subtracted so chunks below the relevance baseline come
// out negative.
func BuildMatrix(lists [][]models.Candidate, agg Aggregator, penalty float64) Matrix {
	q := len(lists)
	type docAcc struct {
		min, max int
		scores   map[int][]float64 // chunk index -> per-query scores
	}
	accs := make(map[string]*docAcc)
	var order []string

	for qi, list := range lists {
		for _, c := range list {
			acc, ok := accs[c.DocID]
			if !ok {
				acc = &docAcc{min: c.Index, max: c.Index, scores: make(map[int][]float64)}
				accs[c.DocID] = acc
				order = append(order, c.DocID)
			}
			if c.Index < acc.min {
				acc.min = c.Index
			}
			if c.Index > acc.max {
				acc.max = c.Index
			}
			row, ok := acc.scores[c.Index]
			if !ok {
				row = make([]float64, q)
				acc.scores[c.Index] = row
			}
			if c.Score > row[qi] {
				row[qi] = c.Score
			}
		}
	}

	zeros := make([]float64, q)
	m := Matrix{Docs: make([]DocValues, 0, len(order))}
	for _, docID := range order {
		acc := accs[docID]
		dv := DocValues{
			DocID:  docID,
			Start:  acc.min,
			Values: make([]float64, acc.max-acc.min+1),
		}
		for i := range dv.Values {
			row, ok := acc.scores[acc.min+i]
			if !ok {
				row = zeros
			}
			dv.Values[i] = agg.Combine(row) - penalty
		}
		m.Docs = append(m.Docs, dv)
	}
	return m
}
