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
	kindBookInstance     = "bookinstance"
	bookInstanceListPath = "/catalog/bookinstances"
)

// BookInstanceService implements the pages and forms of physical copies.
type BookInstanceService struct {
	deps  Deps
	locks *refLocks
	log   *logger.Logger
}

func (s *BookInstanceService) List(ctx context.Context, sort string) (*Page, error) {
	copies, err := s.deps.BookInstances.Find(ctx, repository.BookInstanceCriteria{}, repository.FindOptions{
		Sort:     database.ResolveSort(sort, database.BookInstanceSortOrders),
		Populate: []string{"Book"},
	})
	if err != nil {
		return nil, err
	}
	return render("bookinstance_list", "Book Instance List", Model{"book_instances": bookInstanceViews(copies)}), nil
}

func (s *BookInstanceService) findCopy(ctx context.Context, id uuid.UUID) (*models.BookInstance, error) {
	return s.deps.BookInstances.FindByID(ctx, id, "Book")
}

func (s *BookInstanceService) Detail(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindBookInstance, rawID)
	if err != nil {
		return nil, err
	}
	instance, err := s.findCopy(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBookInstance, id)
		}
		return nil, err
	}
	title := "Copy"
	if instance.Book != nil {
		title = "Copy: " + instance.Book.Title
	}
	return render("bookinstance_detail", title, Model{"book_instance": bookInstanceView(*instance)}), nil
}

func (s *BookInstanceService) fetchBooks(ctx context.Context) ([]models.Book, error) {
	return s.deps.Books.Find(ctx, repository.BookCriteria{}, repository.FindOptions{
		Sort:   database.ResolveSort(database.SortTitleAsc, database.BookSortOrders),
		Select: []string{"title"},
	})
}

func (s *BookInstanceService) form(title string, draft models.BookInstance, clean validation.Form, books []models.Book, errs validation.Errors) *Page {
	return render("bookinstance_form", title, Model{
		"book_instance": submittedBookInstanceView(draft, clean),
		"books":         MarkBooks(books, draft.BookID),
		"statuses":      MarkStatuses(draft.Status),
	}).withErrors(errs)
}

func (s *BookInstanceService) rerender(ctx context.Context, title string, draft models.BookInstance, clean validation.Form, errs validation.Errors) (*Page, error) {
	books, err := s.fetchBooks(ctx)
	if err != nil {
		return nil, err
	}
	return s.form(title, draft, clean, books, errs), nil
}

func (s *BookInstanceService) CreateForm(ctx context.Context) (*Page, error) {
	return s.rerender(ctx, "Create BookInstance", models.BookInstance{}, nil, nil)
}

// save writes a draft while its book cannot be deleted. A missing book or an
// unknown status becomes a form error.
func (s *BookInstanceService) save(ctx context.Context, draft *models.BookInstance) (validation.Errors, error) {
	s.locks.books.RLock()
	defer s.locks.books.RUnlock()

	if _, err := s.deps.Books.FindByID(ctx, draft.BookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validation.Errors{{Field: validation.FieldBook, Message: "Book does not exist."}}, nil
		}
		return nil, err
	}
	if err := s.deps.BookInstances.Save(ctx, draft); err != nil {
		if errors.Is(err, models.ErrInvalidStatus) {
			return validation.Errors{{Field: validation.FieldStatus, Message: "Invalid status"}}, nil
		}
		return nil, err
	}
	return nil, nil
}

func (s *BookInstanceService) Store(ctx context.Context, form validation.Form) (*Page, error) {
	draft, clean, errs := validation.DecodeBookInstance(form)
	if len(errs) > 0 {
		return s.rerender(ctx, "Create BookInstance", draft, clean, errs)
	}
	errs, err := s.save(ctx, &draft)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return s.rerender(ctx, "Create BookInstance", draft, clean, errs)
	}
	s.log.Info("book instance created", "id", draft.ID, "book", draft.BookID)
	s.deps.Events.PublishCatalogEvent("bookinstance.created", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *BookInstanceService) EditForm(ctx context.Context, rawID string) (*Page, error) {
	id, err := parseID(kindBookInstance, rawID)
	if err != nil {
		return nil, err
	}
	var (
		instance *models.BookInstance
		books    []models.Book
	)
	err = fetchAll(ctx,
		into(&instance, func(ctx context.Context) (*models.BookInstance, error) {
			return s.deps.BookInstances.FindByID(ctx, id)
		}),
		into(&books, s.fetchBooks),
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBookInstance, id)
		}
		return nil, err
	}
	return s.form("Update BookInstance", *instance, nil, books, nil), nil
}

func (s *BookInstanceService) Update(ctx context.Context, rawID string, form validation.Form) (*Page, error) {
	id, err := parseID(kindBookInstance, rawID)
	if err != nil {
		return nil, err
	}
	draft, clean, errs := validation.DecodeBookInstance(form)
	draft.ID = id
	if len(errs) > 0 {
		return s.rerender(ctx, "Update BookInstance", draft, clean, errs)
	}
	errs, err = s.save(ctx, &draft)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(kindBookInstance, id)
		}
		return nil, err
	}
	if len(errs) > 0 {
		return s.rerender(ctx, "Update BookInstance", draft, clean, errs)
	}
	s.log.Info("book instance updated", "id", id)
	s.deps.Events.PublishCatalogEvent("bookinstance.updated", draft.URL())
	return redirect(draft.URL()), nil
}

func (s *BookInstanceService) DeleteConfirm(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(bookInstanceListPath), nil
	}
	instance, err := s.findCopy(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return redirect(bookInstanceListPath), nil
		}
		return nil, err
	}
	return render("bookinstance_delete", "Delete BookInstance", Model{"book_instance": bookInstanceView(*instance)}), nil
}

// Delete removes a copy. Nothing references copies, so it is never blocked.
func (s *BookInstanceService) Delete(ctx context.Context, id uuid.UUID) (DeleteResult[models.BookInstance, struct{}], error) {
	guard := deleteGuard[models.BookInstance, struct{}]{
		find:   s.findCopy,
		remove: s.deps.BookInstances.RemoveByID,
	}
	res, err := guard.run(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to delete book instance %s: %w", id, err)
	}
	return res, nil
}

func (s *BookInstanceService) Destroy(ctx context.Context, rawID string) (*Page, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return redirect(bookInstanceListPath), nil
	}
	res, err := s.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Outcome == Deleted {
		s.log.Info("book instance deleted", "id", id)
		s.deps.Events.PublishCatalogEvent("bookinstance.deleted", bookInstanceListPath)
	}
	return redirect(bookInstanceListPath), nil
}
