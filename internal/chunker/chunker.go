package chunker

import (
	"strings"

	"relseg/internal/models"
)

// Split breaks a document into chunks by packing paragraphs up to maxSize
// characters. Chunk indices are contiguous from 0, which segment extraction
// relies on. The document's first markdown heading (or the docID when there
// is none) becomes every chunk's header for display.
//
// Ingestion sophistication is deliberately minimal here; the extraction core
// accepts chunks from any splitter.
func Split(docID, content string, maxSize int) []models.Chunk {
	if maxSize <= 0 {
		maxSize = 1000
	}
	header := heading(content)
	if header == "" {
		header = docID
	}

	paragraphs := splitParagraphs(content)
	var chunks []models.Chunk
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			DocID:  docID,
			Index:  len(chunks),
			Header: header,
			Text:   b.String(),
		})
		b.Reset()
	}
	for _, para := range paragraphs {
		if b.Len() > 0 && b.Len()+len(para) > maxSize {
			flush()
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(para)
		// Oversized single paragraphs become their own chunk.
		if b.Len() > maxSize {
			flush()
		}
	}
	flush()
	return chunks
}

func splitParagraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func heading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		if line != "" {
			return ""
		}
	}
	return ""
}
