package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/camden-git/librarycatalog/database"
	"github.com/camden-git/librarycatalog/models"
)

// FindOptions controls ordering, projection and reference expansion of a Find.
type FindOptions struct {
	// Sort orders the result; the zero value leaves the order unspecified.
	Sort database.SortOption
	// Select limits the loaded columns. The id column is always loaded.
	Select []string
	// Populate lists relations to expand, e.g. "Author", "Genres", "Book".
	Populate []string
}

// BookCriteria filters books. Zero fields do not filter.
type BookCriteria struct {
	AuthorID uuid.UUID
	GenreID  uuid.UUID
}

// BookInstanceCriteria filters copies. Zero fields do not filter.
type BookInstanceCriteria struct {
	BookID uuid.UUID
	Status models.BookInstanceStatus
}

// AuthorRepositoryInterface defines the methods for author data operations
type AuthorRepositoryInterface interface {
	Find(ctx context.Context, opts FindOptions) ([]models.Author, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Author, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, author *models.Author) error
	RemoveByID(ctx context.Context, id uuid.UUID) error
}

// GenreRepositoryInterface defines the methods for genre data operations
type GenreRepositoryInterface interface {
	Find(ctx context.Context, opts FindOptions) ([]models.Genre, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Genre, error)
	// FindByName matches names exactly, case included
	FindByName(ctx context.Context, name string) (*models.Genre, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, genre *models.Genre) error
	RemoveByID(ctx context.Context, id uuid.UUID) error
}

// BookRepositoryInterface defines the methods for book data operations
type BookRepositoryInterface interface {
	Find(ctx context.Context, criteria BookCriteria, opts FindOptions) ([]models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.Book, error)
	Count(ctx context.Context, criteria BookCriteria) (int64, error)
	// Save replaces the book record including its genre set
	Save(ctx context.Context, book *models.Book) error
	RemoveByID(ctx context.Context, id uuid.UUID) error
}

// BookInstanceRepositoryInterface defines the methods for copy data operations
type BookInstanceRepositoryInterface interface {
	Find(ctx context.Context, criteria BookInstanceCriteria, opts FindOptions) ([]models.BookInstance, error)
	FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.BookInstance, error)
	Count(ctx context.Context, criteria BookInstanceCriteria) (int64, error)
	Save(ctx context.Context, instance *models.BookInstance) error
	RemoveByID(ctx context.Context, id uuid.UUID) error
}
