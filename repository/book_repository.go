package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
)

// BookRepository handles database operations for Book entities and their genre references
type BookRepository struct {
	DB  *gorm.DB
	log *logger.Logger
}

// NewBookRepository creates a new instance of BookRepository
func NewBookRepository(db *gorm.DB, baseLog *logger.Logger) *BookRepository {
	return &BookRepository{DB: db, log: baseLog.With("repo", "BookRepository")}
}

func (r *BookRepository) filtered(ctx context.Context, criteria BookCriteria) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Book{})
	if criteria.AuthorID != uuid.Nil {
		q = q.Where("books.author_id = ?", criteria.AuthorID)
	}
	if criteria.GenreID != uuid.Nil {
		q = q.Joins("JOIN book_genres ON book_genres.book_id = books.id").
			Where("book_genres.genre_id = ?", criteria.GenreID)
	}
	return q
}

// Find lists books matching criteria
func (r *BookRepository) Find(ctx context.Context, criteria BookCriteria, opts FindOptions) ([]models.Book, error) {
	var books []models.Book
	q := applyFindOptions(r.filtered(ctx, criteria), models.Book{}.TableName(), opts)
	if err := q.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	naturalSort(books, opts.Sort, func(b models.Book) string { return b.Title })
	return books, nil
}

// FindByID retrieves a book by its ID, expanding the given relations
func (r *BookRepository) FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.Book, error) {
	var book models.Book
	q := r.DB.WithContext(ctx)
	for _, rel := range populate {
		q = q.Preload(rel)
	}
	err := q.First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}
	return &book, nil
}

// Count returns the number of books matching criteria
func (r *BookRepository) Count(ctx context.Context, criteria BookCriteria) (int64, error) {
	var count int64
	if err := r.filtered(ctx, criteria).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// Save creates or fully replaces a book. The genre set is replaced by
// book.Genres, of which only the IDs are used; genre rows are never written.
func (r *BookRepository) Save(ctx context.Context, book *models.Book) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if book.ID == uuid.Nil {
			if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
				return fmt.Errorf("failed to create book %s: %w", book.Title, err)
			}
		} else {
			result := tx.Model(book).Select("*").Omit("id", "created_at", clause.Associations).Updates(book)
			if result.Error != nil {
				return fmt.Errorf("failed to update book ID %s: %w", book.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
			if err := tx.Where("book_id = ?", book.ID).Delete(&models.BookGenre{}).Error; err != nil {
				return fmt.Errorf("failed to clear genres of book ID %s: %w", book.ID, err)
			}
		}

		links := make([]models.BookGenre, 0, len(book.Genres))
		seen := make(map[uuid.UUID]bool, len(book.Genres))
		for _, g := range book.Genres {
			if g.ID == uuid.Nil || seen[g.ID] {
				continue
			}
			seen[g.ID] = true
			links = append(links, models.BookGenre{BookID: book.ID, GenreID: g.ID})
		}
		if len(links) == 0 {
			return nil
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to set genres of book ID %s: %w", book.ID, err)
		}
		return nil
	})
}

// RemoveByID physically deletes a book and its genre links
func (r *BookRepository) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Book{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete book ID %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.BookGenre{}).Error; err != nil {
			return fmt.Errorf("failed to delete genre links of book ID %s: %w", id, err)
		}
		r.log.Debug("book removed", "id", id)
		return nil
	})
}
