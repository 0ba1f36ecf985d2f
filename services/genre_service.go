package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/camden-git/librarycatalog/database"
	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/repository"
	"github.com/camden-git/librarycatalog/validation"
)

const (
	kindGenre     = "genre"
	genreListPath = "/catalog/genres"
)

// GenreService implements the genre pages and forms.
type GenreService struct {
	deps  Deps
	locks *refLocks
	log   *logger.Logger
}

func (s *GenreService) List(ctx context.Context, sort string) (*Page, error) {
	genres, err := s.deps.Genres.Find(ctx, repository.FindOptions{
		Sort: database.ResolveSort(sort, database.GenreSortOrders),
	})
	if err != nil {
		return nil, err
	}
	return render("genre_list", "Genre List", Model{"genres": genreViews(genres)}), nil
}

func (s *GenreService) booksIn(ctx context.Context, id uuid.UUID) ([]models.Book, error) {
	return s.deps.Books.Find(ctx, repository.BookCriteria{GenreID: id}, repository.FindOptions{
		Sort:   database.ResolveSort(database.SortTitleAsc, database.BookSortOrders),
		Select: []string{"title", "summary"},
	})
}

func (s *GenreService) genreWithBooks(ctx context.Context, id uuid.UUID) (*models.Genre, []models.Book, error) {
	var (
		genre *models.Genre
		books []models.Book
	)
	err := fetchAll(ctx,
		into(&genre, func(ctx context.Context) (*models.Genre, error) {
			return s.deps.Genres.FindByID(ctx, id)
		}),
		into(&books, func(ctx context.Context) ([]models.Book, error) {
			return s.booksIn(ctx, id)
		}),
	)
	return genre, books, err
}

func (s *GenreService) Detail(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindGenre, rawID)
	if err != nil {
		return nil, err
	}
	genre, books, err := s.genreWithBooks(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindGenre, id)
		}
		return nil, err
	}
	return render("genre_detail", "Genre Detail", Model{
		"genre": genreView(*genre),
		"books": bookViews(books),
	}), nil
}

func (s *GenreService) form(title string, genre models.Genre, errs validation.Errors) *Page {
	return render("genre_form", title, Model{"genre": genreView(genre)}).withErrors(errs)
}

func (s *GenreService) CreateForm(ctx context.Context) (*Page, error) {
	return s.form("Create Genre", models.Genre{}, nil), nil
}

// existing returns the genre already named name, or nil.
func (s *GenreService) existing(ctx context.Context, name string) (*models.Genre, error) {
	genre, err := s.deps.Genres.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return genre, err
}

// Store creates a genre. Submitting a name that already exists redirects to
// that genre instead of creating a second one.
func (s *GenreService) Store(ctx context.Context, form validation.Form) (*Page, error) {
	draft, errs := validation.DecodeGenre(form)
	if len(errs) > 0 {
		return s.form("Create Genre", draft, errs), nil
	}
	dup, err := s.existing(ctx, draft.Name)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return redirect(dup.URL()), nil
	}
	if err := s.deps.Genres.Save(ctx, &draft); err != nil {
		return nil, err
	}
	s.log.Info("genre created", "id", draft.ID, "name", draft.Name)
	s.deps.Events.PublishCatalogEvent("genre.created", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *GenreService) EditForm(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindGenre, rawID)
	if err != nil {
		return nil, err
	}
	genre, err := s.deps.Genres.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindGenre, id)
		}
		return nil, err
	}
	return s.form("Update Genre", *genre, nil), nil
}

// Update renames a genre. Renaming onto another genre's name redirects to
// that genre and leaves both unchanged.
func (s *GenreService) Update(ctx context.Context, rawID string, form validation.Form) (*Page, error) {
	id, err := parseID(kindGenre, rawID)
	if err != nil {
		return nil, err
	}
	draft, errs := validation.DecodeGenre(form)
	draft.ID = id
	if len(errs) > 0 {
		return s.form("Update Genre", draft, errs), nil
	}
	dup, err := s.existing(ctx, draft.Name)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != id {
		return redirect(dup.URL()), nil
	}
	if err := s.deps.Genres.Save(ctx, &draft); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindGenre, id)
		}
		return nil, err
	}
	s.log.Info("genre updated", "id", id)
	s.deps.Events.PublishCatalogEvent("genre.updated", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *GenreService) DeleteConfirm(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(genreListPath), nil
	}
	genre, books, err := s.genreWithBooks(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirect(genreListPath), nil
		}
		return nil, err
	}
	return s.deletePage(*genre, books), nil
}

func (s *GenreService) deletePage(genre models.Genre, books []models.Book) *Page {
	return render("genre_delete", "Delete Genre", Model{
		"genre": genreView(genre),
		"books": bookViews(books),
	})
}

// Delete runs the delete guard for a genre.
func (s *GenreService) Delete(ctx context.Context, id uuid.UUID) (DeleteResult[models.Genre, models.Book], error) {
	guard := deleteGuard[models.Genre, models.Book]{
		lock:       &s.locks.genres,
		find:       s.deps.Genres.FindByID,
		dependents: s.booksIn,
		remove:     s.deps.Genres.RemoveByID,
	}
	res, err := guard.run(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to delete genre %s: %w", id, err)
	}
	return res, nil
}

func (s *GenreService) Destroy(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(genreListPath), nil
	}
	res, err := s.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case Blocked:
		s.log.Debug("genre delete blocked", "id", id, "books", len(res.Dependents))
		return s.deletePage(*res.Entity, res.Dependents), nil
	case Deleted:
		s.log.Info("genre deleted", "id", id)
		s.deps.Events.PublishCatalogEvent("genre.deleted", genreListPath)
	}
	return redirect(genreListPath), nil
}
