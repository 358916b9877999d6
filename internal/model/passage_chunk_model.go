package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type PassageChunk struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaperId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex   int       `gorm:"default:0"` // 0-based order within the paper
	Text         string    `gorm:"type:text"`
	SectionTitle *string   `gorm:"type:text"`
	PageStart    *int
	PageEnd      *int
	Embedding    pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-3-small@768
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (PassageChunk) TableName() string {
	return "passage_chunks"
}
