package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
)

// AuthorRepository handles database operations for Author entities
type AuthorRepository struct {
	DB  *gorm.DB
	log *logger.Logger
}

// NewAuthorRepository creates a new instance of AuthorRepository
func NewAuthorRepository(db *gorm.DB, baseLog *logger.Logger) *AuthorRepository {
	return &AuthorRepository{DB: db, log: baseLog.With("repo", "AuthorRepository")}
}

// Find lists authors with the given ordering and projection
func (r *AuthorRepository) Find(ctx context.Context, opts FindOptions) ([]models.Author, error) {
	var authors []models.Author
	q := applyFindOptions(r.DB.WithContext(ctx).Model(&models.Author{}), models.Author{}.TableName(), opts)
	if err := q.Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	naturalSort(authors, opts.Sort, func(a models.Author) string { return a.FamilyName })
	return authors, nil
}

// FindByID retrieves an author by its ID
func (r *AuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	var author models.Author
	err := r.DB.WithContext(ctx).First(&author, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get author by ID %s: %w", id, err)
	}
	return &author, nil
}

// Count returns the number of authors
func (r *AuthorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Author{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return count, nil
}

// Save creates the author when it has no ID, otherwise replaces every field
// of the stored record
func (r *AuthorRepository) Save(ctx context.Context, author *models.Author) error {
	db := r.DB.WithContext(ctx)
	if author.ID == uuid.Nil {
		if err := db.Create(author).Error; err != nil {
			return fmt.Errorf("failed to create author %s %s: %w", author.FirstName, author.FamilyName, err)
		}
		return nil
	}

	result := db.Model(author).Select("*").Omit("id", "created_at").Updates(author)
	if result.Error != nil {
		return fmt.Errorf("failed to update author ID %s: %w", author.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveByID physically deletes an author
func (r *AuthorRepository) RemoveByID(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Delete(&models.Author{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete author ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Debug("author removed", "id", id)
	return nil
}
