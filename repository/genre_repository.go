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

// GenreRepository handles database operations for Genre entities
type GenreRepository struct {
	DB  *gorm.DB
	log *logger.Logger
}

// NewGenreRepository creates a new instance of GenreRepository
func NewGenreRepository(db *gorm.DB, baseLog *logger.Logger) *GenreRepository {
	return &GenreRepository{DB: db, log: baseLog.With("repo", "GenreRepository")}
}

// Find lists genres with the given ordering and projection
func (r *GenreRepository) Find(ctx context.Context, opts FindOptions) ([]models.Genre, error) {
	var genres []models.Genre
	q := applyFindOptions(r.DB.WithContext(ctx).Model(&models.Genre{}), models.Genre{}.TableName(), opts)
	if err := q.Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	naturalSort(genres, opts.Sort, func(g models.Genre) string { return g.Name })
	return genres, nil
}

// FindByID retrieves a genre by its ID
func (r *GenreRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Genre, error) {
	var genre models.Genre
	err := r.DB.WithContext(ctx).First(&genre, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get genre by ID %s: %w", id, err)
	}
	return &genre, nil
}

// FindByName retrieves a genre by its exact name
func (r *GenreRepository) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	var genre models.Genre
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&genre).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get genre by name %s: %w", name, err)
	}
	return &genre, nil
}

// Count returns the number of genres
func (r *GenreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Genre{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count genres: %w", err)
	}
	return count, nil
}

// Save creates the genre when it has no ID, otherwise replaces the stored record
func (r *GenreRepository) Save(ctx context.Context, genre *models.Genre) error {
	db := r.DB.WithContext(ctx)
	if genre.ID == uuid.Nil {
		if err := db.Create(genre).Error; err != nil {
			return fmt.Errorf("failed to create genre %s: %w", genre.Name, err)
		}
		return nil
	}

	result := db.Model(genre).Select("*").Omit("id", "created_at").Updates(genre)
	if result.Error != nil {
		return fmt.Errorf("failed to update genre ID %s: %w", genre.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveByID physically deletes a genre
func (r *GenreRepository) RemoveByID(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Delete(&models.Genre{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete genre ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Debug("genre removed", "id", id)
	return nil
}
