package models

// ChunkRef identifies one chunk inside one document.
type ChunkRef struct {
	DocID string `json:"docID"`
	Index int    `json:"index"`
}

type Chunk struct {
	ID     string `json:"id"`
	DocID  string `json:"docID"`
	Index  int    `json:"index"`
	Header string `json:"header,omitempty"`
	Text   string `json:"text"`
}

// Candidate is one retrieval hit for one query: a chunk plus the score the
// retrieval layer (vector store or reranker) assigned to it.
type Candidate struct {
	DocID string  `json:"docID"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Segment is a contiguous run of chunks [Start, End] (inclusive) within one
// document, returned as a single retrieval result. Score is the summed
// relevance value of its member chunks.
type Segment struct {
	DocID   string  `json:"docID"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Score   float64 `json:"score"`
	Content string  `json:"content,omitempty"`
}

// Length is the number of chunks the segment spans.
func (s Segment) Length() int { return s.End - s.Start + 1 }
