package service

import (
	"context"
	"encoding/json"
	"time"

	"citation-engine-be/internal/dto"
	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/repository/contract"
	"citation-engine-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIndexerService interface {
	Consume(ctx context.Context) error
}

// indexerService drains the passage indexing queue: each message is one
// chunk of a paper's full text, which it embeds and writes to the index.
type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	chunkRepository   contract.PassageChunkRepository
	embeddingProvider embedding.Provider
	logger            logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunkRepository contract.PassageChunkRepository,
	embeddingProvider embedding.Provider,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		chunkRepository:   chunkRepository,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexPassageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.logger.Error("indexer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed payloads never become valid; do not retry
		return
	}

	vector, err := is.embeddingProvider.Embed(ctx, payload.Text)
	if err != nil {
		is.logger.Error("indexer", "failed to embed passage", map[string]interface{}{
			"paperId":    payload.PaperId.String(),
			"chunkIndex": payload.ChunkIndex,
			"error":      err.Error(),
		})
		msg.Nack() // provider hiccups are retriable
		return
	}

	chunk := &entity.PassageChunk{
		Id:         uuid.New(),
		PaperId:    payload.PaperId,
		ChunkIndex: payload.ChunkIndex,
		Text:       payload.Text,
		Embedding:  vector,
		CreatedAt:  time.Now(),
	}

	if err := is.chunkRepository.Create(ctx, chunk); err != nil {
		is.logger.Error("indexer", "failed to persist passage chunk", map[string]interface{}{
			"paperId": payload.PaperId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	is.logger.Info("indexer", "passage indexed", map[string]interface{}{
		"paperId":    payload.PaperId.String(),
		"chunkIndex": payload.ChunkIndex,
	})
	msg.Ack()
}
