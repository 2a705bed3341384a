package rank

import "gonum.org/v1/gonum/stat/distuv"

// Calibrator maps a raw relevance score in [0,1] to a calibrated score in
// [0,1] whose absolute magnitude is meaningful, not just its rank. Segment
// search sums absolute values, so a scorer that clusters everything near 1.0
// (typical of rerankers) would make every window look equally good.
type Calibrator interface {
	Calibrate(x float64) float64
}

// BetaCalibrator pushes mid-range scores toward the extremes using the CDF
// of a symmetric Beta distribution with shape parameters below 1. Monotonic
// non-decreasing, with Calibrate(0)=0 and Calibrate(1)=1.
type BetaCalibrator struct {
	dist distuv.Beta
}

func NewBetaCalibrator(a, b float64) BetaCalibrator {
	return BetaCalibrator{dist: distuv.Beta{Alpha: a, Beta: b}}
}

// DefaultCalibrator is the shape used for reranker scores.
func DefaultCalibrator() BetaCalibrator { return NewBetaCalibrator(0.4, 0.4) }

func (c BetaCalibrator) Calibrate(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return c.dist.CDF(x)
}

// Identity passes scores through unchanged. Used for sources that already
// produce well-spread absolute relevance, such as plain cosine similarity.
type Identity struct{}

func (Identity) Calibrate(x float64) float64 { return x }
