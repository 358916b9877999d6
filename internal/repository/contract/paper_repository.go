package contract

import (
	"context"

	"citation-engine-be/internal/entity"

	"github.com/google/uuid"
)

type PaperRepository interface {
	Create(ctx context.Context, paper *entity.Paper) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Paper, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Paper, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
