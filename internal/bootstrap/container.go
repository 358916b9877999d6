package bootstrap

import (
	"context"
	"log"

	"citation-engine-be/internal/config"
	"citation-engine-be/internal/controller"
	"citation-engine-be/internal/handler"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/repository/cached"
	"citation-engine-be/internal/repository/implementation"
	"citation-engine-be/internal/service"
	"citation-engine-be/internal/websocket"
	"citation-engine-be/pkg/embedding"
	pktNats "citation-engine-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PaperController      controller.IPaperController
	SuggestionController controller.ISuggestionController

	// Background Services (exposed for main.go to run)
	IndexerService service.IIndexerService

	// WebSockets
	SuggestHandler *handler.SuggestHandler
	WebSocketHub   *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	validate := validator.New()

	// 2. Event Bus (in-process indexing queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (analytics events; optional)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (embedding cache; optional)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (embedding cache disabled)", err)
		rdb = nil
	}

	// 3. Embedding Provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIKey, cfg.Ai.OpenAIModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb)

	// 4. Repositories
	paperRepo := cached.NewPaperRepository(implementation.NewPaperRepository(db))
	chunkRepo := implementation.NewPassageChunkRepository(db)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Index.TopicName)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Index.TopicName,
		chunkRepo,
		embeddingProvider,
		sysLogger,
	)

	suggestionService := service.NewSuggestionService(
		embeddingProvider,
		chunkRepo,
		paperRepo,
		cfg.Suggest,
		sysLogger,
	)
	paperService := service.NewPaperService(
		paperRepo,
		chunkRepo,
		publisherService,
		cfg.Index.ChunkSize,
		cfg.Index.ChunkOverlap,
		sysLogger,
	)

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/suggest.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	suggestHandler := handler.NewSuggestHandler(
		suggestionService,
		natsPub,
		wsHub,
		validate,
		cfg.Suggest,
		wsLogger,
	)

	// 7. Controllers
	paperController := controller.NewPaperController(paperService)
	suggestionController := controller.NewSuggestionController(suggestionService, paperService)

	return &Container{
		PaperController:      paperController,
		SuggestionController: suggestionController,
		IndexerService:       indexerService,
		SuggestHandler:       suggestHandler,
		WebSocketHub:         wsHub,
	}
}
