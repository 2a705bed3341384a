package rank

import "fmt"

// Aggregator combines one chunk's per-query scores into a single value.
// scores has one entry per query; chunks missing from a query's candidate
// list contribute 0 at that position.
type Aggregator interface {
	Combine(scores []float64) float64
}

// MaxAggregator keeps a chunk that is highly relevant to any one query.
// This is the default.
type MaxAggregator struct{}

func (MaxAggregator) Combine(scores []float64) float64 {
	var m float64
	for _, s := range scores {
		if s > m {
			m = s
		}
	}
	return m
}

// MeanAggregator averages across queries, rewarding chunks relevant to many.
type MeanAggregator struct{}

func (MeanAggregator) Combine(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// WeightedAggregator is a weighted sum with one weight per query position.
// Weights are normalized at construction so they sum to 1.
type WeightedAggregator struct {
	weights []float64
}

func NewWeighted(weights []float64) (WeightedAggregator, error) {
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return WeightedAggregator{}, fmt.Errorf("negative query weight %v", w)
		}
		sum += w
	}
	if sum == 0 {
		return WeightedAggregator{}, fmt.Errorf("query weights sum to zero")
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		norm[i] = w / sum
	}
	return WeightedAggregator{weights: norm}, nil
}

func (a WeightedAggregator) Combine(scores []float64) float64 {
	var sum float64
	for i, s := range scores {
		if i >= len(a.weights) {
			break
		}
		sum += a.weights[i] * s
	}
	return sum
}

// NewAggregator selects a strategy by name: "max" (default when empty),
// "mean", or "weighted" (requires weights, one per query).
func NewAggregator(name string, weights []float64) (Aggregator, error) {
	switch name {
	case "", "max":
		return MaxAggregator{}, nil
	case "mean":
		return MeanAggregator{}, nil
	case "weighted":
		return NewWeighted(weights)
	default:
		return nil, fmt.Errorf("unknown aggregation strategy %q", name)
	}
}
