package memory

import (
	"context"
	"sync"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/repository/contract"

	"github.com/google/uuid"
)

type PaperRepository struct {
	mu     sync.RWMutex
	papers map[uuid.UUID]*entity.Paper
}

func NewPaperRepository() contract.PaperRepository {
	return &PaperRepository{
		papers: make(map[uuid.UUID]*entity.Paper),
	}
}

func (m *PaperRepository) Create(ctx context.Context, paper *entity.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if paper.Id == uuid.Nil {
		paper.Id = uuid.New()
	}
	cp := *paper
	m.papers[paper.Id] = &cp
	return nil
}

func (m *PaperRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.papers[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *PaperRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entity.Paper
	for _, id := range ids {
		if p, ok := m.papers[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *PaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.papers, id)
	return nil
}

func (m *PaperRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.papers)), nil
}
