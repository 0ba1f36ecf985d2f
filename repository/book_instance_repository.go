package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
)

// BookInstanceRepository handles database operations for copies of books
type BookInstanceRepository struct {
	DB  *gorm.DB
	log *logger.Logger
}

// NewBookInstanceRepository creates a new instance of BookInstanceRepository
func NewBookInstanceRepository(db *gorm.DB, baseLog *logger.Logger) *BookInstanceRepository {
	return &BookInstanceRepository{DB: db, log: baseLog.With("repo", "BookInstanceRepository")}
}

func (r *BookInstanceRepository) filtered(ctx context.Context, criteria BookInstanceCriteria) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.BookInstance{})
	if criteria.BookID != uuid.Nil {
		q = q.Where("book_instances.book_id = ?", criteria.BookID)
	}
	if criteria.Status != "" {
		q = q.Where("book_instances.status = ?", criteria.Status)
	}
	return q
}

// Find lists copies matching criteria
func (r *BookInstanceRepository) Find(ctx context.Context, criteria BookInstanceCriteria, opts FindOptions) ([]models.BookInstance, error) {
	var instances []models.BookInstance
	q := applyFindOptions(r.filtered(ctx, criteria), models.BookInstance{}.TableName(), opts)
	if err := q.Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to list book instances: %w", err)
	}
	return instances, nil
}

// FindByID retrieves a copy by its ID, expanding the given relations
func (r *BookInstanceRepository) FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.BookInstance, error) {
	var instance models.BookInstance
	q := r.DB.WithContext(ctx)
	for _, rel := range populate {
		q = q.Preload(rel)
	}
	err := q.First(&instance, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book instance by ID %s: %w", id, err)
	}
	return &instance, nil
}

// Count returns the number of copies matching criteria
func (r *BookInstanceRepository) Count(ctx context.Context, criteria BookInstanceCriteria) (int64, error) {
	var count int64
	if err := r.filtered(ctx, criteria).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count book instances: %w", err)
	}
	return count, nil
}

// Save creates the copy when it has no ID, otherwise replaces the stored record.
// Status and due date fall back to their creation defaults when unset.
// Unknown statuses fail with models.ErrInvalidStatus.
func (r *BookInstanceRepository) Save(ctx context.Context, instance *models.BookInstance) error {
	db := r.DB.WithContext(ctx)
	if instance.ID == uuid.Nil {
		if err := db.Omit(clause.Associations).Create(instance).Error; err != nil {
			return fmt.Errorf("failed to create book instance of book %s: %w", instance.BookID, err)
		}
		return nil
	}

	if instance.Status == "" {
		instance.Status = models.DefaultBookInstanceStatus
	}
	if time.Time(instance.DueBack).IsZero() {
		instance.DueBack = datatypes.Date(time.Now())
	}
	result := db.Model(instance).Select("*").Omit("id", "created_at", clause.Associations).Updates(instance)
	if result.Error != nil {
		return fmt.Errorf("failed to update book instance ID %s: %w", instance.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveByID physically deletes a copy
func (r *BookInstanceRepository) RemoveByID(ctx context.Context, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).Delete(&models.BookInstance{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book instance ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Debug("book instance removed", "id", id)
	return nil
}
