package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genre represents a book genre using GORM.
// Name uniqueness is checked by the application before writes, not by the schema.
type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Genre) TableName() string {
	return "genres"
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g Genre) URL() string {
	return "/catalog/genre/" + g.ID.String()
}
