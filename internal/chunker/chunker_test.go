package chunker

import (
	"strings"
	"testing"
)

func TestSplitPacksParagraphs(t *testing.T) {
	content := "para one.\n\npara two.\n\npara three."
	chunks := Split("doc.txt", content, 25)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("indices not contiguous: chunk %d has index %d", i, c.Index)
		}
		if c.DocID != "doc.txt" {
			t.Fatalf("docID = %q", c.DocID)
		}
	}
	joined := ""
	for _, c := range chunks {
		joined += c.Text + "\n\n"
	}
	for _, p := range []string{"para one.", "para two.", "para three."} {
		if !strings.Contains(joined, p) {
			t.Fatalf("paragraph %q lost", p)
		}
	}
}

func TestSplitUsesHeadingAsHeader(t *testing.T) {
	chunks := Split("doc.md", "# User Guide\n\nbody text", 1000)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	if chunks[0].Header != "User Guide" {
		t.Fatalf("header = %q", chunks[0].Header)
	}
}

func TestSplitFallsBackToDocID(t *testing.T) {
	chunks := Split("notes.txt", "no heading here", 1000)
	if chunks[0].Header != "notes.txt" {
		t.Fatalf("header = %q", chunks[0].Header)
	}
}

func TestSplitEmptyContent(t *testing.T) {
	if chunks := Split("d", "   \n\n  ", 1000); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitOversizedParagraph(t *testing.T) {
	big := strings.Repeat("word ", 300)
	chunks := Split("d", big+"\n\nsmall", 100)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want oversized paragraph isolated", len(chunks))
	}
}
