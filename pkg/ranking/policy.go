// Package ranking turns raw vector distances into confidence-scored,
// deterministically ordered suggestion candidates.
package ranking

import (
	"sort"

	"citation-engine-be/internal/repository/contract"
)

// Tier labels for display. Thresholds are policy, not magic numbers; they
// live on the Policy so deployments can tune them.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

type Policy struct {
	// TopK bounds the result list. Fewer candidates are returned as-is,
	// never padded.
	TopK int
	// HighThreshold and MediumThreshold split confidence into display tiers.
	HighThreshold   float64
	MediumThreshold float64
	// CollapseByPaper keeps only the best-scoring chunk per paper. Off by
	// default: different passages of one paper are distinct suggestions.
	CollapseByPaper bool
}

func DefaultPolicy() Policy {
	return Policy{
		TopK:            10,
		HighThreshold:   0.85,
		MediumThreshold: 0.70,
	}
}

// RankedChunk is a candidate with its derived confidence.
type RankedChunk struct {
	*contract.ScoredPassageChunk
	Confidence float64
}

// Confidence maps cosine distance d to a score in [0,1] via 1/(1+d).
// Monotonically decreasing in d; distance 0 maps to confidence 1.
func Confidence(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

func (p Policy) Tier(confidence float64) string {
	switch {
	case confidence > p.HighThreshold:
		return TierHigh
	case confidence >= p.MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Rank scores, orders and bounds the candidate set. Ordering is confidence
// descending; exact confidence ties break by paperId ascending then
// chunkIndex ascending so repeated calls produce identical output.
func (p Policy) Rank(scored []*contract.ScoredPassageChunk) []RankedChunk {
	ranked := make([]RankedChunk, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Chunk == nil {
			continue
		}
		ranked = append(ranked, RankedChunk{
			ScoredPassageChunk: s,
			Confidence:         Confidence(s.Distance),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		pi, pj := ranked[i].Chunk.PaperId.String(), ranked[j].Chunk.PaperId.String()
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Chunk.ChunkIndex < ranked[j].Chunk.ChunkIndex
	})

	if p.CollapseByPaper {
		seen := make(map[string]bool, len(ranked))
		collapsed := ranked[:0]
		for _, r := range ranked {
			key := r.Chunk.PaperId.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			collapsed = append(collapsed, r)
		}
		ranked = collapsed
	}

	if p.TopK > 0 && len(ranked) > p.TopK {
		ranked = ranked[:p.TopK]
	}
	return ranked
}
