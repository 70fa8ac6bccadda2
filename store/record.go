package store

import "time"

// Record is the unit of storage and retrieval: one chunk of extracted text
// with its embedding. Score is populated by VectorSearch only.
type Record struct {
	Id        string
	Text      string
	Metadata  map[string]any
	Embedding []float32
	Score     float64
	CreatedAt time.Time
}
