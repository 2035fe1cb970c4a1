package core

import (
	"strconv"
	"time"
)

// Chunk is an indexed slice of a source document.
type Chunk struct {
	ID         ID             `json:"id"`
	DocumentID string         `json:"document_id"`
	Position   int            `json:"position"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Vector     []float32      `json:"vector,omitempty"`
	InsertedAt time.Time      `json:"inserted_at"`
}

// NewChunk builds a chunk whose ID derives from its document and position.
func NewChunk(documentID string, position int, text string) *Chunk {
	return &Chunk{
		ID:         IDFromContent(documentID + "#" + strconv.Itoa(position)),
		DocumentID: documentID,
		Position:   position,
		Text:       text,
		Metadata:   map[string]any{"source": documentID, "position": position},
	}
}

// ChunkMatch is a chunk returned by a vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// ChunkTexts returns the text of every chunk, in order.
func ChunkTexts(chunks []*Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
