package services

import (
	"context"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/repository"
)

// Publisher is notified after every successful catalog write.
type Publisher interface {
	PublishCatalogEvent(task, path string)
}

type nopPublisher struct{}

func (nopPublisher) PublishCatalogEvent(string, string) {}

// StatusCountFunc counts copies per status.
type StatusCountFunc func(ctx context.Context) (map[models.BookInstanceStatus]int64, error)

// Deps are the collaborators shared by the catalog services.
type Deps struct {
	Authors       repository.AuthorRepositoryInterface
	Genres        repository.GenreRepositoryInterface
	Books         repository.BookRepositoryInterface
	BookInstances repository.BookInstanceRepositoryInterface
	StatusCounts  StatusCountFunc
	Events        Publisher
	Log           *logger.Logger
}

// Catalog groups the per-resource services. They share one set of reference
// locks so a delete of one kind is serialized against writes referencing it.
type Catalog struct {
	Index         *IndexService
	Authors       *AuthorService
	Genres        *GenreService
	Books         *BookService
	BookInstances *BookInstanceService
}

func NewCatalog(d Deps) *Catalog {
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	locks := &refLocks{}
	return &Catalog{
		Index:         &IndexService{deps: d, log: d.Log.With("service", "IndexService")},
		Authors:       &AuthorService{deps: d, locks: locks, log: d.Log.With("service", "AuthorService")},
		Genres:        &GenreService{deps: d, locks: locks, log: d.Log.With("service", "GenreService")},
		Books:         &BookService{deps: d, locks: locks, log: d.Log.With("service", "BookService")},
		BookInstances: &BookInstanceService{deps: d, locks: locks, log: d.Log.With("service", "BookInstanceService")},
	}
}
