package implementation

import (
	"context"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/mapper"
	"citation-engine-be/internal/model"
	"citation-engine-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PassageChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageChunkMapper
}

func NewPassageChunkRepository(db *gorm.DB) contract.PassageChunkRepository {
	return &PassageChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageChunkMapper(),
	}
}

func (r *PassageChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.PassageChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *PassageChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.PassageChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.PassageChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PassageChunkRepositoryImpl) DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperId).Delete(&model.PassageChunk{}).Error
}

func (r *PassageChunkRepositoryImpl) CountByPaperId(ctx context.Context, paperId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PassageChunk{}).
		Where("paper_id = ?", paperId).
		Count(&count).Error
	return count, err
}

// SearchNearest runs a pgvector cosine-distance scan: embedding <=> vector.
// Results come back ordered by distance ascending; the caller applies the
// ranking policy on top.
func (r *PassageChunkRepositoryImpl) SearchNearest(ctx context.Context, embedding []float32, topN int) ([]*contract.ScoredPassageChunk, error) {
	if topN <= 0 {
		topN = 10
	}

	type result struct {
		model.PassageChunk
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("passage_chunks").
		Select("passage_chunks.*, embedding <=> ? as distance", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(topN).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassageChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassageChunk{
			Chunk:    r.mapper.ToEntity(&res.PassageChunk),
			Distance: res.Distance,
		}
	}
	return scored, nil
}
