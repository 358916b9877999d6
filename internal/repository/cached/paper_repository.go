// Package cached decorates repositories with in-process caches. Paper
// metadata is read on every suggestion response, so it sits behind a
// short-TTL cache to keep the hydration step off the database hot path.
package cached

import (
	"context"
	"time"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/repository/contract"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	paperTTL      = 5 * time.Minute
	sweepInterval = 10 * time.Minute
)

type PaperRepository struct {
	inner contract.PaperRepository
	cache *gocache.Cache
}

func NewPaperRepository(inner contract.PaperRepository) contract.PaperRepository {
	return &PaperRepository{
		inner: inner,
		cache: gocache.New(paperTTL, sweepInterval),
	}
}

func (r *PaperRepository) Create(ctx context.Context, paper *entity.Paper) error {
	if err := r.inner.Create(ctx, paper); err != nil {
		return err
	}
	r.cache.Set(paper.Id.String(), paper, gocache.DefaultExpiration)
	return nil
}

func (r *PaperRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Paper, error) {
	if hit, ok := r.cache.Get(id.String()); ok {
		return hit.(*entity.Paper), nil
	}
	p, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		r.cache.Set(id.String(), p, gocache.DefaultExpiration)
	}
	return p, nil
}

func (r *PaperRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Paper, error) {
	var found []*entity.Paper
	var missing []uuid.UUID
	for _, id := range ids {
		if hit, ok := r.cache.Get(id.String()); ok {
			found = append(found, hit.(*entity.Paper))
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		fetched, err := r.inner.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range fetched {
			r.cache.Set(p.Id.String(), p, gocache.DefaultExpiration)
			found = append(found, p)
		}
	}
	return found, nil
}

func (r *PaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return r.inner.Delete(ctx, id)
}

func (r *PaperRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}
