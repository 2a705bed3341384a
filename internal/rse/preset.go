package rse

import (
	"fmt"
	"sort"
)

// Preset bundles the numeric thresholds that control segment search.
// MinimumValue and segment values share one convention throughout: they are
// post-penalty sums (values as built by the relevance matrix).
type Preset struct {
	// IrrelevantChunkPenalty is subtracted from every chunk's combined
	// score so low-signal chunks carry negative value.
	IrrelevantChunkPenalty float64
	// MaxLength bounds a single segment, in chunks.
	MaxLength int
	// OverallMaxLength bounds the total chunk count across all returned
	// segments.
	OverallMaxLength int
	// MinimumValue is the smallest segment value eligible for selection.
	MinimumValue float64
	// MaxSegments caps how many segments are returned.
	MaxSegments int
}

func (p Preset) Validate() error {
	if p.MaxLength < 1 {
		return fmt.Errorf("preset: max length %d < 1", p.MaxLength)
	}
	if p.OverallMaxLength < 1 {
		return fmt.Errorf("preset: overall max length %d < 1", p.OverallMaxLength)
	}
	if p.MaxSegments < 1 {
		return fmt.Errorf("preset: max segments %d < 1", p.MaxSegments)
	}
	if p.IrrelevantChunkPenalty < 0 {
		return fmt.Errorf("preset: negative penalty %v", p.IrrelevantChunkPenalty)
	}
	return nil
}

// edgeBar is the minimum value a segment's first or last chunk must carry.
// Weak chunks may bridge a segment's interior, but a chunk that cannot pull
// its share of MinimumValue never pads an edge: without this bound, greedy
// selection would happily glue a marginal 0.1-value chunk onto an already
// strong window just to grow the sum.
func (p Preset) edgeBar() float64 {
	return p.MinimumValue / float64(p.MaxLength)
}

// ErrUnknownPreset wraps the offending name.
type ErrUnknownPreset struct{ Name string }

func (e ErrUnknownPreset) Error() string {
	return fmt.Sprintf("unknown preset %q (known: %v)", e.Name, PresetNames())
}

var presets = map[string]Preset{
	// Default tradeoff between recall and output size.
	"balanced": {
		IrrelevantChunkPenalty: 0.18,
		MaxLength:              15,
		OverallMaxLength:       30,
		MinimumValue:           0.5,
		MaxSegments:            5,
	},
	// Permissive fallback: near-zero bar so some result almost always
	// survives, at the cost of weaker segments.
	"find_all": {
		IrrelevantChunkPenalty: 0.09,
		MaxLength:              40,
		OverallMaxLength:       200,
		MinimumValue:           0.1,
		MaxSegments:            20,
	},
	// Few, short, high-confidence segments.
	"precision": {
		IrrelevantChunkPenalty: 0.2,
		MaxLength:              10,
		OverallMaxLength:       20,
		MinimumValue:           0.7,
		MaxSegments:            3,
	},
	// Long segments, generous budget, for whole-section answers.
	"comprehensive": {
		IrrelevantChunkPenalty: 0.12,
		MaxLength:              30,
		OverallMaxLength:       60,
		MinimumValue:           0.3,
		MaxSegments:            8,
	},
}

// ResolvePreset maps a name to its Preset. Unknown names are a
// configuration error and must be surfaced before any scoring work.
func ResolvePreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, ErrUnknownPreset{Name: name}
	}
	return p, nil
}

// PresetNames lists the known preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
