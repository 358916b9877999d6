package entity

import "github.com/google/uuid"

// CitationSuggestion is one ranked result returned to the writer. Built
// fresh per request; never persisted by this service.
type CitationSuggestion struct {
	PaperId      uuid.UUID `json:"paperId"`
	ChunkId      uuid.UUID `json:"chunkId"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Year         *int      `json:"year,omitempty"`
	Journal      *string   `json:"journal,omitempty"`
	Confidence   float64   `json:"confidence"`
	Tier         string    `json:"tier"`
	ChunkText    string    `json:"chunkText"`
	ChunkIndex   int       `json:"chunkIndex"`
	SectionTitle *string   `json:"sectionTitle,omitempty"`
}
