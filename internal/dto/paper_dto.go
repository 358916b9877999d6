package dto

import "github.com/google/uuid"

type CreatePaperRequest struct {
	Title    string   `json:"title" validate:"required,min=1,max=500"`
	Authors  []string `json:"authors" validate:"required,min=1,dive,min=1"`
	Year     *int     `json:"year,omitempty" validate:"omitempty,gte=1500,lte=2100"`
	Journal  *string  `json:"journal,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	FullText string   `json:"full_text" validate:"required,min=1"`
}

type CreatePaperResponse struct {
	PaperId    uuid.UUID `json:"paper_id"`
	ChunkCount int       `json:"chunk_count"`
}
