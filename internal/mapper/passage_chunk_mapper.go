package mapper

import (
	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type PassageChunkMapper struct{}

func NewPassageChunkMapper() *PassageChunkMapper {
	return &PassageChunkMapper{}
}

func (m *PassageChunkMapper) ToEntity(c *model.PassageChunk) *entity.PassageChunk {
	if c == nil {
		return nil
	}
	return &entity.PassageChunk{
		Id:           c.Id,
		PaperId:      c.PaperId,
		ChunkIndex:   c.ChunkIndex,
		Text:         c.Text,
		SectionTitle: c.SectionTitle,
		PageStart:    c.PageStart,
		PageEnd:      c.PageEnd,
		Embedding:    c.Embedding.Slice(),
		CreatedAt:    c.CreatedAt,
	}
}

func (m *PassageChunkMapper) ToModel(c *entity.PassageChunk) *model.PassageChunk {
	if c == nil {
		return nil
	}
	return &model.PassageChunk{
		Id:           c.Id,
		PaperId:      c.PaperId,
		ChunkIndex:   c.ChunkIndex,
		Text:         c.Text,
		SectionTitle: c.SectionTitle,
		PageStart:    c.PageStart,
		PageEnd:      c.PageEnd,
		Embedding:    pgvector.NewVector(c.Embedding),
		CreatedAt:    c.CreatedAt,
	}
}

func (m *PassageChunkMapper) ToEntities(chunks []*model.PassageChunk) []*entity.PassageChunk {
	entities := make([]*entity.PassageChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
