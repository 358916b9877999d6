package ranking

import (
	"testing"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredChunk(paperId uuid.UUID, chunkIndex int, distance float64) *contract.ScoredPassageChunk {
	return &contract.ScoredPassageChunk{
		Chunk: &entity.PassageChunk{
			Id:         uuid.New(),
			PaperId:    paperId,
			ChunkIndex: chunkIndex,
		},
		Distance: distance,
	}
}

func TestConfidenceMonotonic(t *testing.T) {
	distances := []float64{0, 0.01, 0.1, 0.5, 1.0, 1.5, 2.0}
	prev := 1.1
	for _, d := range distances {
		c := Confidence(d)
		assert.LessOrEqual(t, c, prev, "confidence must not increase with distance %f", d)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
		prev = c
	}
}

func TestConfidenceZeroDistanceIsOne(t *testing.T) {
	assert.Equal(t, 1.0, Confidence(0))
}

func TestTier(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, TierHigh, p.Tier(0.9))
	assert.Equal(t, TierMedium, p.Tier(0.85))
	assert.Equal(t, TierMedium, p.Tier(0.70))
	assert.Equal(t, TierLow, p.Tier(0.69))
}

func TestRankTieBreakByPaperThenChunkIndex(t *testing.T) {
	p1 := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	// Two chunks from the same paper at identical distance: chunkIndex 0
	// must come before chunkIndex 2.
	scored := []*contract.ScoredPassageChunk{
		scoredChunk(p1, 2, 0.10),
		scoredChunk(p1, 0, 0.10),
	}

	ranked := DefaultPolicy().Rank(scored)
	require.Len(t, ranked, 2)
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, 2, ranked[1].Chunk.ChunkIndex)
}

func TestRankTieBreakByPaperId(t *testing.T) {
	pa := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	pb := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")

	scored := []*contract.ScoredPassageChunk{
		scoredChunk(pb, 0, 0.25),
		scoredChunk(pa, 0, 0.25),
	}

	ranked := DefaultPolicy().Rank(scored)
	require.Len(t, ranked, 2)
	assert.Equal(t, pa, ranked[0].Chunk.PaperId)
	assert.Equal(t, pb, ranked[1].Chunk.PaperId)
}

func TestRankOrdersByConfidence(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	scored := []*contract.ScoredPassageChunk{
		scoredChunk(p1, 0, 0.8),
		scoredChunk(p2, 0, 0.1),
		scoredChunk(p1, 3, 0.4),
	}

	ranked := DefaultPolicy().Rank(scored)
	require.Len(t, ranked, 3)
	assert.Equal(t, 0.1, ranked[0].Distance)
	assert.Equal(t, 0.4, ranked[1].Distance)
	assert.Equal(t, 0.8, ranked[2].Distance)
}

func TestRankBoundedByTopK(t *testing.T) {
	p := DefaultPolicy()
	p.TopK = 3

	var scored []*contract.ScoredPassageChunk
	for i := 0; i < 10; i++ {
		scored = append(scored, scoredChunk(uuid.New(), i, float64(i)*0.05))
	}

	ranked := p.Rank(scored)
	assert.Len(t, ranked, 3)
}

func TestRankCollapseByPaper(t *testing.T) {
	p := DefaultPolicy()
	p.CollapseByPaper = true

	paper := uuid.New()
	other := uuid.New()
	scored := []*contract.ScoredPassageChunk{
		scoredChunk(paper, 0, 0.1),
		scoredChunk(paper, 1, 0.2),
		scoredChunk(other, 0, 0.3),
	}

	ranked := p.Rank(scored)
	require.Len(t, ranked, 2)
	assert.Equal(t, paper, ranked[0].Chunk.PaperId)
	assert.Equal(t, 0, ranked[0].Chunk.ChunkIndex)
	assert.Equal(t, other, ranked[1].Chunk.PaperId)
}

func TestRankDeterministic(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	scored := []*contract.ScoredPassageChunk{
		scoredChunk(p1, 1, 0.2),
		scoredChunk(p2, 0, 0.2),
		scoredChunk(p1, 0, 0.5),
	}

	a := DefaultPolicy().Rank(scored)
	b := DefaultPolicy().Rank(scored)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Chunk.Id, b[i].Chunk.Id)
	}
}
