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
	kindBook     = "book"
	bookListPath = "/catalog/books"
)

// BookService implements the book pages and forms.
type BookService struct {
	deps  Deps
	locks *refLocks
	log   *logger.Logger
}

func (s *BookService) List(ctx context.Context, sort string) (*Page, error) {
	books, err := s.deps.Books.Find(ctx, repository.BookCriteria{}, repository.FindOptions{
		Sort:     database.ResolveSort(sort, database.BookSortOrders),
		Select:   []string{"title", "author_id"},
		Populate: []string{"Author"},
	})
	if err != nil {
		return nil, err
	}
	return render("book_list", "Book List", Model{"books": bookViews(books)}), nil
}

func (s *BookService) findBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.deps.Books.FindByID(ctx, id, "Author", "Genres")
}

func (s *BookService) copiesOf(ctx context.Context, id uuid.UUID) ([]models.BookInstance, error) {
	return s.deps.BookInstances.Find(ctx, repository.BookInstanceCriteria{BookID: id}, repository.FindOptions{})
}

func (s *BookService) bookWithCopies(ctx context.Context, id uuid.UUID) (*models.Book, []models.BookInstance, error) {
	var (
		book   *models.Book
		copies []models.BookInstance
	)
	err := fetchAll(ctx,
		into(&book, func(ctx context.Context) (*models.Book, error) {
			return s.findBook(ctx, id)
		}),
		into(&copies, func(ctx context.Context) ([]models.BookInstance, error) {
			return s.copiesOf(ctx, id)
		}),
	)
	return book, copies, err
}

func (s *BookService) Detail(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindBook, rawID)
	if err != nil {
		return nil, err
	}
	book, copies, err := s.bookWithCopies(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBook, id)
		}
		return nil, err
	}
	return render("book_detail", book.Title, Model{
		"book":           bookView(*book),
		"book_instances": bookInstanceViews(copies),
	}), nil
}

func (s *BookService) fetchAuthors(ctx context.Context) ([]models.Author, error) {
	return s.deps.Authors.Find(ctx, repository.FindOptions{
		Sort: database.ResolveSort(database.SortFamilyNameAsc, database.AuthorSortOrders),
	})
}

func (s *BookService) fetchGenres(ctx context.Context) ([]models.Genre, error) {
	return s.deps.Genres.Find(ctx, repository.FindOptions{
		Sort: database.ResolveSort(database.SortNameAsc, database.GenreSortOrders),
	})
}

// options loads the author and genre choices of the book form.
func (s *BookService) options(ctx context.Context) ([]models.Author, []models.Genre, error) {
	var (
		authors []models.Author
		genres  []models.Genre
	)
	err := fetchAll(ctx, into(&authors, s.fetchAuthors), into(&genres, s.fetchGenres))
	return authors, genres, err
}

func (s *BookService) form(title string, draft models.Book, clean validation.Form, authors []models.Author, genres []models.Genre, errs validation.Errors) *Page {
	return render("book_form", title, Model{
		"book":    submittedBookView(draft, clean),
		"authors": MarkAuthors(authors, draft.AuthorID),
		"genres":  MarkGenres(genres, draft.GenreIDs()),
	}).withErrors(errs)
}

// rerender shows the form again with the submitted draft and its errors.
// clean holds the submitted values, including ones the draft could not take.
func (s *BookService) rerender(ctx context.Context, title string, draft models.Book, clean validation.Form, errs validation.Errors) (*Page, error) {
	authors, genres, err := s.options(ctx)
	if err != nil {
		return nil, err
	}
	return s.form(title, draft, clean, authors, genres, errs), nil
}

func (s *BookService) CreateForm(ctx context.Context) (*Page, error) {
	return s.rerender(ctx, "Create Book", models.Book{}, nil, nil)
}

// checkRefs reports form errors for an author or genres that do not exist.
func (s *BookService) checkRefs(ctx context.Context, draft models.Book) (validation.Errors, error) {
	genreIDs := draft.GenreIDs()
	var authorMissing bool
	genreMissing := make([]bool, len(genreIDs))

	fetches := []fetchFunc{
		func(ctx context.Context) error {
			_, err := s.deps.Authors.FindByID(ctx, draft.AuthorID)
			if errors.Is(err, repository.ErrNotFound) {
				authorMissing = true
				return nil
			}
			return err
		},
	}
	for i, id := range genreIDs {
		fetches = append(fetches, func(ctx context.Context) error {
			_, err := s.deps.Genres.FindByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				genreMissing[i] = true
				return nil
			}
			return err
		})
	}
	if err := fetchAll(ctx, fetches...); err != nil {
		return nil, err
	}

	var errs validation.Errors
	if authorMissing {
		errs = append(errs, validation.FieldError{Field: validation.FieldAuthor, Message: "Author does not exist."})
	}
	for _, missing := range genreMissing {
		if missing {
			errs = append(errs, validation.FieldError{Field: validation.FieldGenre, Message: "Genre does not exist."})
			break
		}
	}
	return errs, nil
}

// save writes a draft while no author or genre can be deleted, after
// checking that the ones it references still exist.
func (s *BookService) save(ctx context.Context, draft *models.Book) (validation.Errors, error) {
	s.locks.authors.RLock()
	defer s.locks.authors.RUnlock()
	s.locks.genres.RLock()
	defer s.locks.genres.RUnlock()

	errs, err := s.checkRefs(ctx, *draft)
	if err != nil || len(errs) > 0 {
		return errs, err
	}
	return nil, s.deps.Books.Save(ctx, draft)
}

func (s *BookService) Store(ctx context.Context, form validation.Form) (*Page, error) {
	draft, clean, errs := validation.DecodeBook(form)
	if len(errs) > 0 {
		return s.rerender(ctx, "Create Book", draft, clean, errs)
	}
	errs, err := s.save(ctx, &draft)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return s.rerender(ctx, "Create Book", draft, clean, errs)
	}
	s.log.Info("book created", "id", draft.ID, "title", draft.Title)
	s.deps.Events.PublishCatalogEvent("book.created", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *BookService) EditForm(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindBook, rawID)
	if err != nil {
		return nil, err
	}
	var (
		book    *models.Book
		authors []models.Author
		genres  []models.Genre
	)
	err = fetchAll(ctx,
		into(&book, func(ctx context.Context) (*models.Book, error) {
			return s.deps.Books.FindByID(ctx, id, "Genres")
		}),
		into(&authors, s.fetchAuthors),
		into(&genres, s.fetchGenres),
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBook, id)
		}
		return nil, err
	}
	return s.form("Update Book", *book, nil, authors, genres, nil), nil
}

func (s *BookService) Update(ctx context.Context, rawID string, form validation.Form) (*Page, error) {
	id, err := parseID(kindBook, rawID)
	if err != nil {
		return nil, err
	}
	draft, clean, errs := validation.DecodeBook(form)
	draft.ID = id
	if len(errs) > 0 {
		return s.rerender(ctx, "Update Book", draft, clean, errs)
	}
	errs, err = s.save(ctx, &draft)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBook, id)
		}
		return nil, err
	}
	if len(errs) > 0 {
		return s.rerender(ctx, "Update Book", draft, clean, errs)
	}
	s.log.Info("book updated", "id", id)
	s.deps.Events.PublishCatalogEvent("book.updated", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *BookService) DeleteConfirm(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(bookListPath), nil
	}
	book, copies, err := s.bookWithCopies(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirect(bookListPath), nil
		}
		return nil, err
	}
	return s.deletePage(*book, copies), nil
}

func (s *BookService) deletePage(book models.Book, copies []models.BookInstance) *Page {
	return render("book_delete", "Delete Book", Model{
		"book":           bookView(book),
		"book_instances": bookInstanceViews(copies),
	})
}

// Delete runs the delete guard for a book. Copies of the book block it.
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) (DeleteResult[models.Book, models.BookInstance], error) {
	guard := deleteGuard[models.Book, models.BookInstance]{
		lock:       &s.locks.books,
		find:       s.findBook,
		dependents: s.copiesOf,
		remove:     s.deps.Books.RemoveByID,
	}
	res, err := guard.run(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to delete book %s: %w", id, err)
	}
	return res, nil
}

func (s *BookService) Destroy(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(bookListPath), nil
	}
	res, err := s.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case Blocked:
		s.log.Debug("book delete blocked", "id", id, "copies", len(res.Dependents))
		return s.deletePage(*res.Entity, res.Dependents), nil
	case Deleted:
		s.log.Info("book deleted", "id", id)
		s.deps.Events.PublishCatalogEvent("book.deleted", bookListPath)
	}
	return redirect(bookListPath), nil
}
