package entity

import (
	"time"

	"github.com/google/uuid"
)

type Paper struct {
	Id        uuid.UUID  `json:"paperId"`
	Title     string     `json:"title"`
	Authors   []string   `json:"authors"`
	Year      *int       `json:"year,omitempty"`
	Journal   *string    `json:"journal,omitempty"`
	Abstract  string     `json:"abstract,omitempty"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt *time.Time `json:"-"`
}
