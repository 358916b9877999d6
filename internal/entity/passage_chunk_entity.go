package entity

import (
	"time"

	"github.com/google/uuid"
)

// PassageChunk is one pre-embedded segment of a paper's text. Chunks are
// written by the indexing pipeline and read by similarity search.
type PassageChunk struct {
	Id           uuid.UUID
	PaperId      uuid.UUID
	ChunkIndex   int
	Text         string
	SectionTitle *string
	PageStart    *int
	PageEnd      *int
	Embedding    []float32
	CreatedAt    time.Time
}
