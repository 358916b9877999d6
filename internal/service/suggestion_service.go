package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"citation-engine-be/internal/config"
	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/repository/contract"
	"citation-engine-be/pkg/embedding"
	"citation-engine-be/pkg/ranking"
	"citation-engine-be/pkg/textctx"

	"github.com/google/uuid"
)

// ErrIndexUnavailable distinguishes a search backend failure from a
// legitimately empty result set. Handlers surface it as an error frame
// instead of an empty suggestions list.
var ErrIndexUnavailable = errors.New("passage index unavailable")

type ISuggestionService interface {
	Suggest(ctx context.Context, text string, textContext textctx.TextContext) ([]entity.CitationSuggestion, error)
}

type suggestionService struct {
	embeddingProvider embedding.Provider
	chunkRepository   contract.PassageChunkRepository
	paperRepository   contract.PaperRepository
	policy            ranking.Policy
	searchLimit       int
	minSentenceLen    int
	logger            logger.ILogger
}

func NewSuggestionService(
	embeddingProvider embedding.Provider,
	chunkRepository contract.PassageChunkRepository,
	paperRepository contract.PaperRepository,
	cfg config.SuggestConfig,
	log logger.ILogger,
) ISuggestionService {
	return &suggestionService{
		embeddingProvider: embeddingProvider,
		chunkRepository:   chunkRepository,
		paperRepository:   paperRepository,
		policy: ranking.Policy{
			TopK:            cfg.TopK,
			HighThreshold:   cfg.HighThreshold,
			MediumThreshold: cfg.MediumThreshold,
			CollapseByPaper: cfg.CollapseByPaper,
		},
		searchLimit:    cfg.SearchLimit,
		minSentenceLen: cfg.MinSentenceLen,
		logger:         log,
	}
}

// Suggest embeds the query text, searches the passage index and returns a
// ranked, bounded suggestion list. The same text and index state always
// produce the same list, in the same order.
func (s *suggestionService) Suggest(ctx context.Context, text string, textContext textctx.TextContext) ([]entity.CitationSuggestion, error) {
	// The current sentence is the scoring signal; the surrounding context
	// arrives on the wire but never changes the query.
	query := strings.TrimSpace(text)
	if len([]rune(query)) < s.minSentenceLen {
		return []entity.CitationSuggestion{}, nil
	}

	vector, err := s.embeddingProvider.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, embedding.ErrEmptyText) {
			return []entity.CitationSuggestion{}, nil
		}
		s.logger.Error("suggestion", "embedding failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.chunkRepository.SearchNearest(ctx, vector, s.searchLimit)
	if err != nil {
		s.logger.Error("suggestion", "index search failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	ranked := s.policy.Rank(scored)
	if len(ranked) == 0 {
		return []entity.CitationSuggestion{}, nil
	}

	papers, err := s.hydratePapers(ctx, ranked)
	if err != nil {
		s.logger.Error("suggestion", "paper hydration failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("hydrate papers: %w", err)
	}

	results := make([]entity.CitationSuggestion, 0, len(ranked))
	for _, r := range ranked {
		paper, ok := papers[r.Chunk.PaperId]
		if !ok {
			// Chunk outlived its paper; skip rather than return a
			// suggestion with no citation metadata.
			s.logger.Warn("suggestion", "orphaned chunk skipped", map[string]interface{}{"chunkId": r.Chunk.Id.String()})
			continue
		}
		results = append(results, entity.CitationSuggestion{
			PaperId:      paper.Id,
			ChunkId:      r.Chunk.Id,
			Title:        paper.Title,
			Authors:      paper.Authors,
			Year:         paper.Year,
			Journal:      paper.Journal,
			Confidence:   r.Confidence,
			Tier:         s.policy.Tier(r.Confidence),
			ChunkText:    r.Chunk.Text,
			ChunkIndex:   r.Chunk.ChunkIndex,
			SectionTitle: r.Chunk.SectionTitle,
		})
	}
	return results, nil
}

func (s *suggestionService) hydratePapers(ctx context.Context, ranked []ranking.RankedChunk) (map[uuid.UUID]*entity.Paper, error) {
	seen := make(map[uuid.UUID]bool, len(ranked))
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, r := range ranked {
		if !seen[r.Chunk.PaperId] {
			seen[r.Chunk.PaperId] = true
			ids = append(ids, r.Chunk.PaperId)
		}
	}

	papers, err := s.paperRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]*entity.Paper, len(papers))
	for _, p := range papers {
		byId[p.Id] = p
	}
	return byId, nil
}
