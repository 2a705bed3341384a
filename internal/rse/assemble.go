package rse

import (
	"context"
	"strings"

	"relseg/internal/chunkstore"
	"relseg/internal/models"
)

// Assemble fetches chunk text for each segment and fills in Content.
// Segments keep their incoming order (Search already emits them in
// descending score order). The document header, when present on the first
// chunk, is prepended once rather than per chunk. Scores are not
// re-normalized: a segment's score stays the raw summed relevance value, so
// scores are comparable across documents of one call but not across calls
// with different presets.
func Assemble(ctx context.Context, cs chunkstore.ChunkStore, segments []models.Segment) ([]models.Segment, error) {
	out := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		chunks, err := cs.GetRange(ctx, seg.DocID, seg.Start, seg.End)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		if h := chunks[0].Header; h != "" {
			b.WriteString(h)
			b.WriteString("\n\n")
		}
		for i, c := range chunks {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(c.Text)
		}
		seg.Content = b.String()
		out = append(out, seg)
	}
	return out, nil
}
