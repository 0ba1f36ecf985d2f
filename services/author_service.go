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
	kindAuthor     = "author"
	authorListPath = "/catalog/authors"
)

// AuthorService implements the author pages and forms.
type AuthorService struct {
	deps  Deps
	locks *refLocks
	log   *logger.Logger
}

func (s *AuthorService) List(ctx context.Context, sort string) (*Page, error) {
	authors, err := s.deps.Authors.Find(ctx, repository.FindOptions{
		Sort: database.ResolveSort(sort, database.AuthorSortOrders),
	})
	if err != nil {
		return nil, err
	}
	return render("author_list", "Author List", Model{"authors": authorViews(authors)}), nil
}

// authorWithBooks fetches an author and its books at the same time.
func (s *AuthorService) authorWithBooks(ctx context.Context, id uuid.UUID) (*models.Author, []models.Book, error) {
	var (
		author *models.Author
		books  []models.Book
	)
	err := fetchAll(ctx,
		into(&author, func(ctx context.Context) (*models.Author, error) {
			return s.deps.Authors.FindByID(ctx, id)
		}),
		into(&books, func(ctx context.Context) ([]models.Book, error) {
			return s.booksOf(ctx, id)
		}),
	)
	return author, books, err
}

func (s *AuthorService) booksOf(ctx context.Context, id uuid.UUID) ([]models.Book, error) {
	return s.deps.Books.Find(ctx, repository.BookCriteria{AuthorID: id}, repository.FindOptions{
		Sort:   database.ResolveSort(database.SortTitleAsc, database.BookSortOrders),
		Select: []string{"title", "summary"},
	})
}

func (s *AuthorService) Detail(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindAuthor, rawID)
	if err != nil {
		return nil, err
	}
	author, books, err := s.authorWithBooks(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindAuthor, id)
		}
		return nil, err
	}
	return render("author_detail", "Author Detail", Model{
		"author": authorView(*author),
		"books":  bookViews(books),
	}), nil
}

// form renders the author form. clean holds the submitted values of a
// rejected form and is nil otherwise.
func (s *AuthorService) form(title string, author models.Author, clean validation.Form, errs validation.Errors) *Page {
	return render("author_form", title, Model{"author": submittedAuthorView(author, clean)}).withErrors(errs)
}

func (s *AuthorService) CreateForm(ctx context.Context) (*Page, error) {
	return s.form("Create Author", models.Author{}, nil, nil), nil
}

func (s *AuthorService) Store(ctx context.Context, form validation.Form) (*Page, error) {
	draft, clean, errs := validation.DecodeAuthor(form)
	if len(errs) > 0 {
		return s.form("Create Author", draft, clean, errs), nil
	}
	if err := s.deps.Authors.Save(ctx, &draft); err != nil {
		return nil, err
	}
	s.log.Info("author created", "id", draft.ID)
	s.deps.Events.PublishCatalogEvent("author.created", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *AuthorService) EditForm(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindAuthor, rawID)
	if err != nil {
		return nil, err
	}
	author, err := s.deps.Authors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindAuthor, id)
		}
		return nil, err
	}
	return s.form("Update Author", *author, nil, nil), nil
}

func (s *AuthorService) Update(ctx context.Context, rawID string, form validation.Form) (*Page, error) {
	id, err := parseID(kindAuthor, rawID)
	if err != nil {
		return nil, err
	}
	draft, clean, errs := validation.DecodeAuthor(form)
	draft.ID = id
	if len(errs) > 0 {
		return s.form("Update Author", draft, clean, errs), nil
	}
	if err := s.deps.Authors.Save(ctx, &draft); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindAuthor, id)
		}
		return nil, err
	}
	s.log.Info("author updated", "id", id)
	s.deps.Events.PublishCatalogEvent("author.updated", draft.URL())
	return redirect(draft.URL()), nil
}

// DeleteConfirm shows an author with the books that keep it from being
// deleted. A missing author sends the client back to the list.
func (s *AuthorService) DeleteConfirm(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(authorListPath), nil
	}
	author, books, err := s.authorWithBooks(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirect(authorListPath), nil
		}
		return nil, err
	}
	return s.deletePage(*author, books), nil
}

func (s *AuthorService) deletePage(author models.Author, books []models.Book) *Page {
	return render("author_delete", "Delete Author", Model{
		"author": authorView(author),
		"books":  bookViews(books),
	})
}

// Delete runs the delete guard for an author.
func (s *AuthorService) Delete(ctx context.Context, id uuid.UUID) (DeleteResult[models.Author, models.Book], error) {
	guard := deleteGuard[models.Author, models.Book]{
		lock:       &s.locks.authors,
		find:       s.deps.Authors.FindByID,
		dependents: s.booksOf,
		remove:     s.deps.Authors.RemoveByID,
	}
	res, err := guard.run(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to delete author %s: %w", id, err)
	}
	return res, nil
}

func (s *AuthorService) Destroy(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(authorListPath), nil
	}
	res, err := s.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case Blocked:
		s.log.Debug("author delete blocked", "id", id, "books", len(res.Dependents))
		return s.deletePage(*res.Entity, res.Dependents), nil
	case Deleted:
		s.log.Info("author deleted", "id", id)
		s.deps.Events.PublishCatalogEvent("author.deleted", authorListPath)
	}
	return redirect(authorListPath), nil
}
