package rse

import (
	"context"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"relseg/internal/models"
	"relseg/internal/rank"
)

// mat builds a single-document matrix whose values start at chunk index 0.
func mat(docID string, values ...float64) rank.Matrix {
	return rank.Matrix{Docs: []rank.DocValues{{DocID: docID, Start: 0, Values: values}}}
}

func search(t *testing.T, m rank.Matrix, p Preset) []models.Segment {
	t.Helper()
	segs, err := Search(context.Background(), m, p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	return segs
}

func TestSearchTwoStrongSpansOneDocument(t *testing.T) {
	// A weak chunk (0.1) sits between two strong spans. Including it would
	// grow the sum, but a chunk that cannot pull its share never pads a
	// segment edge, so the engine returns the two tight windows.
	m := mat("d", 0.9, 0.85, -0.3, 0.1, 0.95, 0.92)
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	segs := search(t, m, p)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2: %+v", len(segs), segs)
	}
	if segs[0].Start != 4 || segs[0].End != 5 || math.Abs(segs[0].Score-1.87) > 1e-9 {
		t.Fatalf("first segment = %+v, want [4,5] value 1.87", segs[0])
	}
	if segs[1].Start != 0 || segs[1].End != 1 || math.Abs(segs[1].Score-1.75) > 1e-9 {
		t.Fatalf("second segment = %+v, want [0,1] value 1.75", segs[1])
	}
}

func TestSearchAllNegativeIsEmptyNotError(t *testing.T) {
	m := mat("d", -0.2, -0.5, -0.1, -0.9)
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	segs := search(t, m, p)
	if len(segs) != 0 {
		t.Fatalf("expected empty result, got %+v", segs)
	}
}

func TestSearchOneDominantWindowPerDocument(t *testing.T) {
	m := rank.Matrix{Docs: []rank.DocValues{
		{DocID: "a", Start: 0, Values: []float64{-0.5, 0.9, 0.8, -0.5}},
		{DocID: "b", Start: 0, Values: []float64{-0.4, -0.6, 0.7, 0.75}},
	}}
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	segs := search(t, m, p)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2: %+v", len(segs), segs)
	}
	if segs[0].DocID != "a" || segs[0].Start != 1 || segs[0].End != 2 {
		t.Fatalf("doc a segment = %+v, want [1,2]", segs[0])
	}
	if segs[1].DocID != "b" || segs[1].Start != 2 || segs[1].End != 3 {
		t.Fatalf("doc b segment = %+v, want [2,3]", segs[1])
	}
}

func TestSearchRespectsOverallBudget(t *testing.T) {
	m := mat("d", 0.9, 0.9, -1, 0.8, 0.8, -1, 0.7)
	p := Preset{MaxLength: 2, OverallMaxLength: 3, MinimumValue: 0.5, MaxSegments: 10}
	segs := search(t, m, p)
	// [0,1] (1.8) fits; [3,4] (1.6) would exceed the 3-chunk budget, so the
	// next best that fits is the single chunk [3,3].
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2: %+v", len(segs), segs)
	}
	if segs[0].Start != 0 || segs[0].End != 1 {
		t.Fatalf("first = %+v, want [0,1]", segs[0])
	}
	if segs[1].Start != 3 || segs[1].End != 3 {
		t.Fatalf("second = %+v, want [3,3]", segs[1])
	}
	total := 0
	for _, s := range segs {
		total += s.Length()
	}
	if total > p.OverallMaxLength {
		t.Fatalf("total chunks %d exceeds budget %d", total, p.OverallMaxLength)
	}
}

func TestSearchMaxSegmentsCap(t *testing.T) {
	m := mat("d", 0.9, -1, 0.8, -1, 0.7, -1, 0.6)
	p := Preset{MaxLength: 1, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 2}
	segs := search(t, m, p)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if segs[0].Start != 0 || segs[1].Start != 2 {
		t.Fatalf("expected two best singles, got %+v", segs)
	}
}

func TestSearchTieBreaks(t *testing.T) {
	// Equal values break by document insertion order, then by lower start.
	m := rank.Matrix{Docs: []rank.DocValues{
		{DocID: "late", Start: 0, Values: []float64{1.0}},
		{DocID: "early", Start: 0, Values: []float64{1.0}},
	}}
	p := Preset{MaxLength: 1, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 1}
	segs := search(t, m, p)
	if len(segs) != 1 || segs[0].DocID != "late" {
		t.Fatalf("tie should keep insertion order, got %+v", segs)
	}

	m2 := mat("d", 1.0, -5, 1.0)
	segs2 := search(t, m2, p)
	if len(segs2) != 1 || segs2[0].Start != 0 {
		t.Fatalf("tie should prefer lower start, got %+v", segs2)
	}
}

func TestSearchEqualWindowsAfterFloatNoise(t *testing.T) {
	// Two windows summing the same literal values must compute bit-identical
	// scores even when earlier chunks carry values like 0.1 that have no
	// exact binary representation. Only then does the positional tie-break
	// decide between them.
	m := mat("d", 0.1, 0.2, -1, 0.3, 0.5, -1, 0.3, 0.5)
	p := Preset{MaxLength: 2, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 1}
	segs := search(t, m, p)
	if len(segs) != 1 || segs[0].Start != 3 || segs[0].End != 4 {
		t.Fatalf("tie should prefer the earlier window [3,4], got %+v", segs)
	}

	// Same for single-chunk windows preceded by different noise.
	m2 := mat("d", 0.9, 0.9, -1, 0.8, 0.8)
	p2 := Preset{MaxLength: 1, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 4}
	segs2 := search(t, m2, p2)
	if len(segs2) != 4 {
		t.Fatalf("segments = %d, want 4: %+v", len(segs2), segs2)
	}
	if segs2[2].Start != 3 || segs2[3].Start != 4 {
		t.Fatalf("equal 0.8 singles out of order: %+v", segs2)
	}
}

func TestSearchHonorsStartOffset(t *testing.T) {
	m := rank.Matrix{Docs: []rank.DocValues{
		{DocID: "d", Start: 10, Values: []float64{0.9, 0.8, -0.5}},
	}}
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	segs := search(t, m, p)
	if len(segs) != 1 || segs[0].Start != 10 || segs[0].End != 11 {
		t.Fatalf("expected absolute indices [10,11], got %+v", segs)
	}
}

func TestSearchBridgesWeakInteriorChunk(t *testing.T) {
	// A low-signal chunk between two strong ones may sit inside a segment,
	// just never at its edge.
	m := mat("d", 0.9, 0.05, 0.9)
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	segs := search(t, m, p)
	if len(segs) != 1 || segs[0].Start != 0 || segs[0].End != 2 {
		t.Fatalf("expected bridged segment [0,2], got %+v", segs)
	}
	if math.Abs(segs[0].Score-1.85) > 1e-9 {
		t.Fatalf("bridged value = %v, want 1.85", segs[0].Score)
	}
}

func TestSearchDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	docs := make([]rank.DocValues, 8)
	for d := range docs {
		values := make([]float64, 50)
		for i := range values {
			values[i] = rng.Float64()*1.4 - 0.5
		}
		docs[d] = rank.DocValues{DocID: string(rune('a' + d)), Start: 0, Values: values}
	}
	m := rank.Matrix{Docs: docs}
	p := Preset{MaxLength: 5, OverallMaxLength: 25, MinimumValue: 0.5, MaxSegments: 6}

	first := search(t, m, p)
	for i := 0; i < 20; i++ {
		again := search(t, m, p)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestSearchInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	docs := make([]rank.DocValues, 5)
	for d := range docs {
		values := make([]float64, 80)
		for i := range values {
			values[i] = rng.Float64()*1.2 - 0.4
		}
		docs[d] = rank.DocValues{DocID: string(rune('a' + d)), Start: 3, Values: values}
	}
	m := rank.Matrix{Docs: docs}
	p := Preset{MaxLength: 4, OverallMaxLength: 18, MinimumValue: 0.6, MaxSegments: 5}
	segs := search(t, m, p)

	if len(segs) > p.MaxSegments {
		t.Fatalf("%d segments exceeds cap %d", len(segs), p.MaxSegments)
	}
	total := 0
	claimed := map[string]map[int]bool{}
	for _, s := range segs {
		if s.Start > s.End {
			t.Fatalf("inverted segment %+v", s)
		}
		if s.Length() > p.MaxLength {
			t.Fatalf("segment %+v exceeds max length", s)
		}
		if s.Score < p.MinimumValue {
			t.Fatalf("segment %+v below minimum value", s)
		}
		total += s.Length()
		if claimed[s.DocID] == nil {
			claimed[s.DocID] = map[int]bool{}
		}
		for i := s.Start; i <= s.End; i++ {
			if claimed[s.DocID][i] {
				t.Fatalf("chunk %s[%d] claimed twice", s.DocID, i)
			}
			claimed[s.DocID][i] = true
		}
		// reported score matches the sum of member values
		var sum float64
		for _, dv := range m.Docs {
			if dv.DocID == s.DocID {
				for i := s.Start; i <= s.End; i++ {
					sum += dv.Values[i-dv.Start]
				}
			}
		}
		if math.Abs(sum-s.Score) > 1e-9 {
			t.Fatalf("segment %+v score != sum %v", s, sum)
		}
	}
	if total > p.OverallMaxLength {
		t.Fatalf("total %d exceeds budget %d", total, p.OverallMaxLength)
	}
	// descending score order
	for i := 1; i < len(segs); i++ {
		if segs[i].Score > segs[i-1].Score {
			t.Fatalf("segments not sorted by score: %+v", segs)
		}
	}
}

func TestSearchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := mat("d", 0.9, 0.8)
	p := Preset{MaxLength: 3, OverallMaxLength: 30, MinimumValue: 0.5, MaxSegments: 5}
	if _, err := Search(ctx, m, p); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestSearchInvalidPreset(t *testing.T) {
	if _, err := Search(context.Background(), mat("d", 1), Preset{}); err == nil {
		t.Fatal("expected validation error")
	}
}
