package contract

import (
	"context"

	"citation-engine-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredPassageChunk pairs a chunk with its raw cosine distance from the
// query vector. Smaller distance means higher similarity.
type ScoredPassageChunk struct {
	Chunk    *entity.PassageChunk
	Distance float64
}

// PassageChunkRepository is the searchable store of pre-embedded paper
// passages. SearchNearest is the one read path the suggestion engine needs:
// given a vector, the topN nearest chunks with their distances.
type PassageChunkRepository interface {
	Create(ctx context.Context, chunk *entity.PassageChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.PassageChunk) error
	DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error
	CountByPaperId(ctx context.Context, paperId uuid.UUID) (int64, error)
	SearchNearest(ctx context.Context, embedding []float32, topN int) ([]*ScoredPassageChunk, error)
}
