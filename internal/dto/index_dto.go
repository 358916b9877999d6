package dto

import "github.com/google/uuid"

// IndexPassageMessage is the payload carried on the passage indexing
// queue. One message per chunk; the consumer embeds and persists it.
type IndexPassageMessage struct {
	PaperId    uuid.UUID `json:"paper_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
}
