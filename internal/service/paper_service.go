package service

import (
	"context"
	"encoding/json"
	"time"

	"citation-engine-be/internal/dto"
	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/repository/contract"
	"citation-engine-be/pkg/utils"

	"github.com/google/uuid"
)

type IPaperService interface {
	Create(ctx context.Context, req *dto.CreatePaperRequest) (*dto.CreatePaperResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type paperService struct {
	paperRepository  contract.PaperRepository
	chunkRepository  contract.PassageChunkRepository
	publisherService IPublisherService
	chunkSize        int
	chunkOverlap     int
	logger           logger.ILogger
}

func NewPaperService(
	paperRepository contract.PaperRepository,
	chunkRepository contract.PassageChunkRepository,
	publisherService IPublisherService,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IPaperService {
	return &paperService{
		paperRepository:  paperRepository,
		chunkRepository:  chunkRepository,
		publisherService: publisherService,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		logger:           log,
	}
}

// Create persists the paper metadata, splits its full text into passages
// and enqueues one indexing message per passage. Embedding happens async
// on the consumer side, so ingestion returns quickly.
func (s *paperService) Create(ctx context.Context, req *dto.CreatePaperRequest) (*dto.CreatePaperResponse, error) {
	paper := entity.Paper{
		Id:        uuid.New(),
		Title:     req.Title,
		Authors:   req.Authors,
		Year:      req.Year,
		Journal:   req.Journal,
		Abstract:  req.Abstract,
		CreatedAt: time.Now(),
	}

	if err := s.paperRepository.Create(ctx, &paper); err != nil {
		return nil, err
	}

	chunks := utils.SplitPassages(req.FullText, s.chunkSize, s.chunkOverlap)
	for i, chunk := range chunks {
		payload, err := json.Marshal(dto.IndexPassageMessage{
			PaperId:    paper.Id,
			ChunkIndex: i,
			Text:       chunk,
		})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	s.logger.Info("paper", "paper ingested", map[string]interface{}{
		"paperId":    paper.Id.String(),
		"chunkCount": len(chunks),
	})

	return &dto.CreatePaperResponse{
		PaperId:    paper.Id,
		ChunkCount: len(chunks),
	}, nil
}

func (s *paperService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.chunkRepository.DeleteByPaperId(ctx, id); err != nil {
		return err
	}
	return s.paperRepository.Delete(ctx, id)
}

func (s *paperService) Count(ctx context.Context) (int64, error) {
	return s.paperRepository.Count(ctx)
}
