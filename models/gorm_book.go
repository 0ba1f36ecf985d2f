package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book represents a catalog title using GORM.
// It corresponds to the 'books' table; genres live in 'book_genres'.
type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null;index" json:"title"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Summary   string    `gorm:"not null" json:"summary"`
	ISBN      string    `gorm:"column:isbn;not null" json:"isbn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	// only set when populated
	Author *Author `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Genres []Genre `gorm:"many2many:book_genres;" json:"genres,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b Book) URL() string {
	return "/catalog/book/" + b.ID.String()
}

// GenreIDs returns the identifiers of the book's genre references.
func (b Book) GenreIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Genres))
	for _, g := range b.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// BookGenre is the join table between books and genres.
type BookGenre struct {
	BookID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"book_id"`
	GenreID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"genre_id"`
}

// TableName explicitly sets the table name for GORM.
func (BookGenre) TableName() string {
	return "book_genres"
}
