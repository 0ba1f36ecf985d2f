package services

import (
	"context"
	"fmt"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/repository"
)

// IndexService builds the catalog home page.
type IndexService struct {
	deps Deps
	log  *logger.Logger
}

// Home counts every kind of record concurrently. Any failing count fails the
// whole page.
func (s *IndexService) Home(ctx context.Context) (*Page, error) {
	var (
		books, copies, available, authors, genres int64
		byStatus                                  map[models.BookInstanceStatus]int64
	)
	fetches := []fetchFunc{
		into(&books, func(ctx context.Context) (int64, error) {
			return s.deps.Books.Count(ctx, repository.BookCriteria{})
		}),
		into(&copies, func(ctx context.Context) (int64, error) {
			return s.deps.BookInstances.Count(ctx, repository.BookInstanceCriteria{})
		}),
		into(&available, func(ctx context.Context) (int64, error) {
			return s.deps.BookInstances.Count(ctx, repository.BookInstanceCriteria{Status: models.StatusAvailable})
		}),
		into(&authors, s.deps.Authors.Count),
		into(&genres, s.deps.Genres.Count),
	}
	if s.deps.StatusCounts != nil {
		fetches = append(fetches, into(&byStatus, func(ctx context.Context) (map[models.BookInstanceStatus]int64, error) {
			return s.deps.StatusCounts(ctx)
		}))
	}
	if err := fetchAll(ctx, fetches...); err != nil {
		return nil, fmt.Errorf("failed to count catalog records: %w", err)
	}

	statusCounts := make(map[string]int64, len(byStatus))
	for status, n := range byStatus {
		statusCounts[string(status)] = n
	}
	return render("index", "Local Library Home", Model{
		"book_count":                    books,
		"book_instance_count":           copies,
		"book_instance_available_count": available,
		"author_count":                  authors,
		"genre_count":                   genres,
		"status_counts":                 statusCounts,
	}), nil
}
