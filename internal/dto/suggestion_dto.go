package dto

import (
	"citation-engine-be/internal/entity"
	"citation-engine-be/pkg/textctx"
)

type ManualSuggestionRequest struct {
	Text    string              `json:"text" validate:"required,min=1"`
	Context textctx.TextContext `json:"context"`
}

type SuggestionListResponse struct {
	Results []entity.CitationSuggestion `json:"results"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	PaperCount int64  `json:"paper_count"`
}
