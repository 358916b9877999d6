package mapper

import (
	"encoding/json"
	"time"

	"citation-engine-be/internal/entity"
	"citation-engine-be/internal/model"

	"gorm.io/datatypes"
)

type PaperMapper struct{}

func NewPaperMapper() *PaperMapper {
	return &PaperMapper{}
}

func (m *PaperMapper) ToEntity(p *model.Paper) *entity.Paper {
	if p == nil {
		return nil
	}

	var authors []string
	if len(p.Authors) > 0 {
		// A malformed authors column degrades to an empty list rather than
		// failing the whole lookup.
		_ = json.Unmarshal(p.Authors, &authors)
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Paper{
		Id:        p.Id,
		Title:     p.Title,
		Authors:   authors,
		Year:      p.Year,
		Journal:   p.Journal,
		Abstract:  p.Abstract,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *PaperMapper) ToModel(p *entity.Paper) *model.Paper {
	if p == nil {
		return nil
	}

	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	raw, _ := json.Marshal(authors)

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Paper{
		Id:        p.Id,
		Title:     p.Title,
		Authors:   datatypes.JSON(raw),
		Year:      p.Year,
		Journal:   p.Journal,
		Abstract:  p.Abstract,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *PaperMapper) ToEntities(papers []*model.Paper) []*entity.Paper {
	entities := make([]*entity.Paper, len(papers))
	for i, p := range papers {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
