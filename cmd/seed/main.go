package main

import (
	"context"
	"log"
	"time"

	"citation-engine-be/internal/config"
	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/repository/implementation"
	"citation-engine-be/pkg/database"
	"citation-engine-be/pkg/embedding"
	"citation-engine-be/pkg/utils"

	"github.com/google/uuid"
)

type seedPaper struct {
	title    string
	authors  []string
	year     int
	journal  string
	fullText string
}

var corpus = []seedPaper{
	{
		title:   "Deep Learning",
		authors: []string{"LeCun, Y.", "Bengio, Y.", "Hinton, G."},
		year:    2015,
		journal: "Nature",
		fullText: "Deep learning techniques are revolutionizing artificial intelligence research. " +
			"Deep learning allows computational models that are composed of multiple processing layers to learn " +
			"representations of data with multiple levels of abstraction. These methods have dramatically improved " +
			"the state-of-the-art in speech recognition, visual object recognition, object detection and many other " +
			"domains such as drug discovery and genomics.",
	},
	{
		title:   "Attention Is All You Need",
		authors: []string{"Vaswani, A.", "Shazeer, N.", "Parmar, N."},
		year:    2017,
		journal: "NeurIPS",
		fullText: "The dominant sequence transduction models are based on complex recurrent or convolutional neural " +
			"networks that include an encoder and a decoder. We propose a new simple network architecture, the " +
			"Transformer, based solely on attention mechanisms, dispensing with recurrence and convolutions entirely. " +
			"Experiments on two machine translation tasks show these models to be superior in quality while being " +
			"more parallelizable and requiring significantly less time to train.",
	},
	{
		title:   "Statistical Methods for Research Workers",
		authors: []string{"Fisher, R. A."},
		year:    1925,
		journal: "Oliver and Boyd",
		fullText: "Significance testing provides an objective criterion for judging whether observed deviations from " +
			"expectation could reasonably arise by chance. The value for which P equals 0.05, or 1 in 20, is " +
			"convenient to take as a limit in judging whether a deviation ought to be considered significant or not.",
	},
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		provider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIKey, cfg.Ai.OpenAIModel)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}

	paperRepo := implementation.NewPaperRepository(db)
	chunkRepo := implementation.NewPassageChunkRepository(db)
	ctx := context.Background()

	for _, sp := range corpus {
		year := sp.year
		journal := sp.journal
		paper := &entity.Paper{
			Id:        uuid.New(),
			Title:     sp.title,
			Authors:   sp.authors,
			Year:      &year,
			Journal:   &journal,
			CreatedAt: time.Now(),
		}
		if err := paperRepo.Create(ctx, paper); err != nil {
			log.Fatalf("Error: Failed to create paper %q: %v", sp.title, err)
		}

		chunks := utils.SplitPassages(sp.fullText, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
		entities := make([]*entity.PassageChunk, 0, len(chunks))
		for i, text := range chunks {
			vector, err := provider.Embed(ctx, text)
			if err != nil {
				log.Fatalf("Error: Failed to embed chunk %d of %q: %v", i, sp.title, err)
			}
			entities = append(entities, &entity.PassageChunk{
				Id:         uuid.New(),
				PaperId:    paper.Id,
				ChunkIndex: i,
				Text:       text,
				Embedding:  vector,
				CreatedAt:  time.Now(),
			})
		}
		if err := chunkRepo.CreateBulk(ctx, entities); err != nil {
			log.Fatalf("Error: Failed to persist chunks for %q: %v", sp.title, err)
		}
		log.Printf("Seeded %q (%d chunks)", sp.title, len(entities))
	}

	log.Println("Success: Seed corpus indexed.")
}
