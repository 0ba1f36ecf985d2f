package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/librarycatalog/database"
	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/repository"
	"github.com/camden-git/librarycatalog/testutil"
)

type recordedEvent struct {
	task string
	path string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishCatalogEvent(task, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{task: task, path: path})
}

func (p *recordingPublisher) tasks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.task
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	catalog *Catalog
	events  *recordingPublisher
	repos   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	events := &recordingPublisher{}
	deps := Deps{
		Authors:       repository.NewAuthorRepository(db, log),
		Genres:        repository.NewGenreRepository(db, log),
		Books:         repository.NewBookRepository(db, log),
		BookInstances: repository.NewBookInstanceRepository(db, log),
		StatusCounts: func(ctx context.Context) (map[models.BookInstanceStatus]int64, error) {
			return database.CountCopiesByStatus(ctx, db)
		},
		Events: events,
		Log:    log,
	}
	return &fixture{db: db, catalog: NewCatalog(deps), events: events, repos: deps}
}

var errStoreDown = errors.New("store unavailable")

// fake repositories used to inject store failures

type fakeAuthors struct {
	count    int64
	countErr error
}

func (f *fakeAuthors) Find(ctx context.Context, opts repository.FindOptions) ([]models.Author, error) {
	return nil, nil
}
func (f *fakeAuthors) FindByID(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeAuthors) Count(ctx context.Context) (int64, error) { return f.count, f.countErr }
func (f *fakeAuthors) Save(ctx context.Context, author *models.Author) error {
	return errors.New("unexpected write")
}
func (f *fakeAuthors) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return errors.New("unexpected write")
}

// fakeGenres blocks on Count until its context is cancelled.
type fakeGenres struct{}

func (fakeGenres) Find(ctx context.Context, opts repository.FindOptions) ([]models.Genre, error) {
	return nil, nil
}
func (fakeGenres) FindByID(ctx context.Context, id uuid.UUID) (*models.Genre, error) {
	return &models.Genre{ID: id, Name: "Fake"}, nil
}
func (fakeGenres) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	return nil, repository.ErrNotFound
}
func (fakeGenres) Count(ctx context.Context) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}
func (fakeGenres) Save(ctx context.Context, genre *models.Genre) error {
	return errors.New("unexpected write")
}
func (fakeGenres) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return errors.New("unexpected write")
}

type fakeBooks struct {
	findErr error
}

func (f fakeBooks) Find(ctx context.Context, criteria repository.BookCriteria, opts repository.FindOptions) ([]models.Book, error) {
	return nil, f.findErr
}
func (f fakeBooks) FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.Book, error) {
	return nil, repository.ErrNotFound
}
func (f fakeBooks) Count(ctx context.Context, criteria repository.BookCriteria) (int64, error) {
	return 7, nil
}
func (f fakeBooks) Save(ctx context.Context, book *models.Book) error {
	return errors.New("unexpected write")
}
func (f fakeBooks) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return errors.New("unexpected write")
}

type fakeBookInstances struct {
	countErr error
}

func (f fakeBookInstances) Find(ctx context.Context, criteria repository.BookInstanceCriteria, opts repository.FindOptions) ([]models.BookInstance, error) {
	return nil, nil
}
func (f fakeBookInstances) FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*models.BookInstance, error) {
	return nil, repository.ErrNotFound
}
func (f fakeBookInstances) Count(ctx context.Context, criteria repository.BookInstanceCriteria) (int64, error) {
	return 0, f.countErr
}
func (f fakeBookInstances) Save(ctx context.Context, instance *models.BookInstance) error {
	return errors.New("unexpected write")
}
func (f fakeBookInstances) RemoveByID(ctx context.Context, id uuid.UUID) error {
	return errors.New("unexpected write")
}
