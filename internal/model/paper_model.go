package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Paper struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string         `gorm:"type:text;not null"`
	Authors   datatypes.JSON `gorm:"type:jsonb"` // ordered list of author names
	Year      *int
	Journal   *string   `gorm:"type:text"`
	Abstract  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Paper) TableName() string {
	return "papers"
}
