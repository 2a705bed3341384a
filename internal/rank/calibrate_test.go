package rank

import (
	"math"
	"testing"
)

func TestBetaCalibratorEndpoints(t *testing.T) {
	c := DefaultCalibrator()
	if got := c.Calibrate(0); got != 0 {
		t.Fatalf("Calibrate(0) = %v, want 0", got)
	}
	if got := c.Calibrate(1); got != 1 {
		t.Fatalf("Calibrate(1) = %v, want 1", got)
	}
	// out-of-range inputs clamp instead of panicking
	if got := c.Calibrate(-0.5); got != 0 {
		t.Fatalf("Calibrate(-0.5) = %v, want 0", got)
	}
	if got := c.Calibrate(1.5); got != 1 {
		t.Fatalf("Calibrate(1.5) = %v, want 1", got)
	}
}

func TestBetaCalibratorMonotonic(t *testing.T) {
	c := DefaultCalibrator()
	prev := -1.0
	for i := 0; i <= 1000; i++ {
		x := float64(i) / 1000
		y := c.Calibrate(x)
		if y < prev {
			t.Fatalf("not monotonic at x=%v: %v < %v", x, y, prev)
		}
		if y < 0 || y > 1 {
			t.Fatalf("Calibrate(%v) = %v outside [0,1]", x, y)
		}
		prev = y
	}
}

func TestBetaCalibratorSymmetric(t *testing.T) {
	c := DefaultCalibrator()
	for _, x := range []float64{0.1, 0.25, 0.4, 0.5} {
		sum := c.Calibrate(x) + c.Calibrate(1-x)
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("F(%v)+F(%v) = %v, want 1", x, 1-x, sum)
		}
	}
}

func TestBetaCalibratorSpreadsExtremes(t *testing.T) {
	// With shape parameters below 1 the CDF is steep near the endpoints,
	// which is what separates a reranker's clustered high scores.
	c := DefaultCalibrator()
	if got := c.Calibrate(0.1); got <= 0.1 {
		t.Fatalf("Calibrate(0.1) = %v, want > 0.1", got)
	}
	if got := c.Calibrate(0.9); got >= 0.9 {
		t.Fatalf("Calibrate(0.9) = %v, want < 0.9", got)
	}
}

func TestIdentityCalibrator(t *testing.T) {
	c := Identity{}
	for _, x := range []float64{0, 0.3, 0.77, 1} {
		if got := c.Calibrate(x); got != x {
			t.Fatalf("Identity.Calibrate(%v) = %v", x, got)
		}
	}
}
