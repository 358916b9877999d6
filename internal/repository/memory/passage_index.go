// Package memory provides in-process repository implementations. The passage
// index here does brute-force cosine distance over a map; it backs unit tests
// and small single-node deployments without Postgres.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/repository/contract"

	"github.com/google/uuid"
)

type PassageIndex struct {
	mu     sync.RWMutex
	chunks map[uuid.UUID]*entity.PassageChunk
}

func NewPassageIndex() *PassageIndex {
	return &PassageIndex{
		chunks: make(map[uuid.UUID]*entity.PassageChunk),
	}
}

func (m *PassageIndex) Create(ctx context.Context, chunk *entity.PassageChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chunk.Id == uuid.Nil {
		chunk.Id = uuid.New()
	}
	cp := *chunk
	m.chunks[chunk.Id] = &cp
	return nil
}

func (m *PassageIndex) CreateBulk(ctx context.Context, chunks []*entity.PassageChunk) error {
	for _, c := range chunks {
		if err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *PassageIndex) DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.PaperId == paperId {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *PassageIndex) CountByPaperId(ctx context.Context, paperId uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, c := range m.chunks {
		if c.PaperId == paperId {
			n++
		}
	}
	return n, nil
}

func (m *PassageIndex) SearchNearest(ctx context.Context, embedding []float32, topN int) ([]*contract.ScoredPassageChunk, error) {
	if topN <= 0 {
		topN = 10
	}

	m.mu.RLock()
	scored := make([]*contract.ScoredPassageChunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		cp := *c
		scored = append(scored, &contract.ScoredPassageChunk{
			Chunk:    &cp,
			Distance: cosineDistance(embedding, c.Embedding),
		})
	}
	m.mu.RUnlock()

	// Stable order for equal distances keeps results reproducible, matching
	// the deterministic ordering pgvector gives us.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		if scored[i].Chunk.PaperId != scored[j].Chunk.PaperId {
			return scored[i].Chunk.PaperId.String() < scored[j].Chunk.PaperId.String()
		}
		return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored, nil
}

// cosineDistance is 1 - cosine similarity, mirroring pgvector's <=> operator.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 2 // maximum cosine distance, incomparable vectors sort last
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
