package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/repository"
	"github.com/camden-git/librarycatalog/testutil"
	"github.com/camden-git/librarycatalog/validation"
)

func TestIndexCountsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Frank", "Herbert")
	testutil.SeedGenre(t, ctx, f.db, "Science Fiction")
	book := testutil.SeedBook(t, ctx, f.db, "Dune", author)
	testutil.SeedBookInstance(t, ctx, f.db, book, models.StatusAvailable)
	testutil.SeedBookInstance(t, ctx, f.db, book, models.StatusLoaned)

	page, err := f.catalog.Index.Home(ctx)
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	want := map[string]int64{
		"book_count":                    1,
		"book_instance_count":           2,
		"book_instance_available_count": 1,
		"author_count":                  1,
		"genre_count":                   1,
	}
	for key, n := range want {
		if got := page.Data[key]; got != n {
			t.Errorf("%s: expected %d, got %v", key, n, got)
		}
	}
	statuses := page.Data["status_counts"].(map[string]int64)
	if statuses["Loaned"] != 1 || statuses["Reserved"] != 0 {
		t.Errorf("unexpected status counts %v", statuses)
	}
}

func TestIndexFailsFastOnCopyCount(t *testing.T) {
	catalog := NewCatalog(Deps{
		Authors:       &fakeAuthors{count: 4},
		Genres:        fakeGenres{},
		Books:         fakeBooks{},
		BookInstances: fakeBookInstances{countErr: errStoreDown},
	})

	done := make(chan struct{})
	var (
		page *Page
		err  error
	)
	go func() {
		defer close(done)
		page, err = catalog.Index.Home(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("aggregation did not stop after the first failure")
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected the copy count failure, got %v", err)
	}
	if page != nil {
		t.Fatalf("expected no partial page, got %+v", page)
	}
}

func TestDetailNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, run := range map[string]func() (*Page, error){
		"author":       func() (*Page, error) { return f.catalog.Authors.Detail(ctx, uuid.NewString()) },
		"genre":        func() (*Page, error) { return f.catalog.Genres.Detail(ctx, uuid.NewString()) },
		"book":         func() (*Page, error) { return f.catalog.Books.Detail(ctx, uuid.NewString()) },
		"bookinstance": func() (*Page, error) { return f.catalog.BookInstances.Detail(ctx, uuid.NewString()) },
		"malformed id": func() (*Page, error) { return f.catalog.Books.EditForm(ctx, "42") },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := run()
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			var nf *NotFoundError
			if !errors.As(err, &nf) || nf.Kind == "" {
				t.Errorf("expected a NotFoundError with a kind, got %v", err)
			}
		})
	}
}

func TestDetailStoreFailureIsNotNotFound(t *testing.T) {
	catalog := NewCatalog(Deps{
		Authors:       &fakeAuthors{},
		Genres:        fakeGenres{},
		Books:         fakeBooks{findErr: errStoreDown},
		BookInstances: fakeBookInstances{},
	})
	_, err := catalog.Genres.Detail(context.Background(), uuid.NewString())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestAuthorDetailListsBooksByTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Ursula", "Le Guin")
	testutil.SeedBook(t, ctx, f.db, "The Word for World Is Forest", author)
	testutil.SeedBook(t, ctx, f.db, "Always Coming Home", author)

	page, err := f.catalog.Authors.Detail(ctx, author.ID.String())
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if page.Data["title"] != "Author Detail" {
		t.Errorf("unexpected title %v", page.Data["title"])
	}
	av := page.Data["author"].(AuthorView)
	if av.Name != "Ursula Le Guin" || av.URL != author.URL() {
		t.Errorf("unexpected author view %+v", av)
	}
	books := page.Data["books"].([]BookView)
	if len(books) != 2 || books[0].Title != "Always Coming Home" {
		t.Errorf("expected books sorted by title, got %+v", books)
	}
}

func TestAuthorStoreAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Authors.Store(ctx, validation.FormFromValues(url.Values{
		"first_name":    {"Octavia"},
		"family_name":   {"Butler"},
		"date_of_birth": {"1947-06-22"},
	}))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !page.IsRedirect() {
		t.Fatalf("expected redirect, got %+v", page)
	}

	authors, err := f.repos.Authors.Find(ctx, repository.FindOptions{})
	if err != nil || len(authors) != 1 {
		t.Fatalf("expected one stored author, got %v (%v)", authors, err)
	}
	if page.Redirect != authors[0].URL() {
		t.Errorf("expected redirect to %s, got %s", authors[0].URL(), page.Redirect)
	}

	page, err = f.catalog.Authors.Update(ctx, authors[0].ID.String(), validation.Form{
		"first_name":  {"Octavia E."},
		"family_name": {""},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !page.Errors().Has("family_name") {
		t.Fatalf("expected family_name error, got %v", page.Errors())
	}
	if av := page.Data["author"].(AuthorView); av.FirstName != "Octavia E." || av.ID != authors[0].ID.String() {
		t.Errorf("expected draft values in re-render, got %+v", av)
	}
	stored, _ := f.repos.Authors.FindByID(ctx, authors[0].ID)
	if stored.FirstName != "Octavia" {
		t.Errorf("rejected update must not write, got %q", stored.FirstName)
	}

	if _, err := f.catalog.Authors.Update(ctx, uuid.NewString(), validation.Form{
		"first_name":  {"No"},
		"family_name": {"One"},
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating a missing author, got %v", err)
	}
}

func TestBookStoreRejectsAndPreservesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Frank", "Herbert")
	form := validation.FormFromValues(url.Values{
		"title":   {""},
		"author":  {author.ID.String()},
		"summary": {"Spice and sandworms"},
		"isbn":    {"9780441013593"},
	})

	page, err := f.catalog.Books.Store(ctx, form)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if page.IsRedirect() {
		t.Fatal("expected the form to be re-rendered")
	}
	if !page.Errors().Has("title") {
		t.Fatalf("expected a title error, got %v", page.Errors())
	}
	book := page.Data["book"].(BookView)
	if book.Author != author.ID.String() || book.Summary != "Spice and sandworms" || book.ISBN != "9780441013593" {
		t.Errorf("submitted values not preserved: %+v", book)
	}
	for _, key := range []string{"title", "authors", "genres", "book", "errors"} {
		if _, ok := page.Data[key]; !ok {
			t.Errorf("expected key %q in the re-render model", key)
		}
	}

	n, err := f.repos.Books.Count(ctx, repository.BookCriteria{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("rejected form must not write, found %d books", n)
	}
	if len(f.events.tasks()) != 0 {
		t.Errorf("expected no events, got %v", f.events.tasks())
	}
}

func TestRejectedFormsKeepUnparsableValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Books.Store(ctx, validation.FormFromValues(url.Values{
		"title":   {""},
		"author":  {"Tolkien"},
		"genre":   {"Fantasy"},
		"summary": {"There and back again"},
		"isbn":    {"9780547928227"},
	}))
	if err != nil {
		t.Fatalf("Books.Store: %v", err)
	}
	if !page.Errors().Has("author") || !page.Errors().Has("genre") {
		t.Fatalf("expected author and genre errors, got %v", page.Errors())
	}
	book := page.Data["book"].(BookView)
	if book.Author != "Tolkien" || len(book.Genre) != 1 || book.Genre[0] != "Fantasy" {
		t.Errorf("rejected references not kept: author=%q genre=%v", book.Author, book.Genre)
	}

	page, err = f.catalog.Authors.Store(ctx, validation.FormFromValues(url.Values{
		"first_name":    {"Mary"},
		"family_name":   {"Shelley"},
		"date_of_birth": {"10/12/1815"},
		"date_of_death": {"1851-02-01"},
	}))
	if err != nil {
		t.Fatalf("Authors.Store: %v", err)
	}
	if !page.Errors().Has("date_of_birth") {
		t.Fatalf("expected a date_of_birth error, got %v", page.Errors())
	}
	author := page.Data["author"].(AuthorView)
	if author.DateOfBirth != "10/12/1815" || author.DateOfDeath != "1851-02-01" {
		t.Errorf("submitted dates not kept: birth=%q death=%q", author.DateOfBirth, author.DateOfDeath)
	}

	page, err = f.catalog.BookInstances.Store(ctx, validation.FormFromValues(url.Values{
		"book":     {"not-a-book"},
		"imprint":  {"Allen & Unwin"},
		"due_back": {"next week"},
	}))
	if err != nil {
		t.Fatalf("BookInstances.Store: %v", err)
	}
	instance := page.Data["book_instance"].(BookInstanceView)
	if instance.Book != "not-a-book" || instance.DueBack != "next week" {
		t.Errorf("rejected copy values not kept: book=%q due_back=%q", instance.Book, instance.DueBack)
	}

	for _, count := range []func(context.Context) (int64, error){
		f.repos.Authors.Count,
		func(ctx context.Context) (int64, error) { return f.repos.Books.Count(ctx, repository.BookCriteria{}) },
		func(ctx context.Context) (int64, error) {
			return f.repos.BookInstances.Count(ctx, repository.BookInstanceCriteria{})
		},
	} {
		if n, err := count(ctx); err != nil || n != 0 {
			t.Errorf("rejected forms must not write: n=%d err=%v", n, err)
		}
	}
}

func TestBookStoreRejectsMissingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Books.Store(ctx, validation.Form{
		"title":   {"Orphan"},
		"author":  {uuid.NewString()},
		"summary": {"x"},
		"isbn":    {"x"},
		"genre":   {uuid.NewString()},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !page.Errors().Has("author") || !page.Errors().Has("genre") {
		t.Fatalf("expected author and genre errors, got %v", page.Errors())
	}
}

func TestBookStoreAndEditSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Ursula", "Le Guin")
	testutil.SeedGenre(t, ctx, f.db, "Anthropology")
	b := testutil.SeedGenre(t, ctx, f.db, "Broadside")
	testutil.SeedGenre(t, ctx, f.db, "Chronicle")

	assertOnlyChecked := func(t *testing.T, page *Page, want uuid.UUID) {
		t.Helper()
		options := page.Data["genres"].([]GenreOption)
		if len(options) != 3 {
			t.Fatalf("expected all 3 genres as options, got %d", len(options))
		}
		for _, o := range options {
			if o.Checked != (o.ID == want.String()) {
				t.Errorf("genre %s checked=%v", o.Name, o.Checked)
			}
		}
	}

	// create path with a prefilled draft that fails validation
	page, err := f.catalog.Books.Store(ctx, validation.Form{
		"author": {author.ID.String()},
		"genre":  {b.ID.String()},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	assertOnlyChecked(t, page, b.ID)

	page, err = f.catalog.Books.Store(ctx, validation.Form{
		"title":   {"The Dispossessed"},
		"author":  {author.ID.String()},
		"summary": {"Anarres and Urras"},
		"isbn":    {"9780061054884"},
		"genre":   {b.ID.String()},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !page.IsRedirect() {
		t.Fatalf("expected redirect, got errors %v", page.Errors())
	}

	books, err := f.repos.Books.Find(ctx, repository.BookCriteria{GenreID: b.ID}, repository.FindOptions{})
	if err != nil || len(books) != 1 {
		t.Fatalf("expected the stored book in genre B, got %v (%v)", books, err)
	}

	page, err = f.catalog.Books.EditForm(ctx, books[0].ID.String())
	if err != nil {
		t.Fatalf("EditForm: %v", err)
	}
	assertOnlyChecked(t, page, b.ID)
	for _, o := range page.Data["authors"].([]AuthorOption) {
		if !o.Selected {
			t.Errorf("expected author %s selected", o.Name)
		}
	}
}

func TestMarkGenresComparesByID(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	all := []models.Genre{{ID: a, Name: "A"}, {ID: b, Name: "B"}, {ID: c, Name: "C"}}

	// a fresh copy of the id, not the same value held by the list
	selected := []uuid.UUID{uuid.MustParse(b.String())}
	options := MarkGenres(all, selected)
	for _, o := range options {
		if o.Checked != (o.Name == "B") {
			t.Errorf("genre %s checked=%v", o.Name, o.Checked)
		}
	}
	for _, o := range MarkGenres(all, nil) {
		if o.Checked {
			t.Errorf("expected nothing checked for an empty draft, got %s", o.Name)
		}
	}
}

func TestMarkStatusesDefaultsToMaintenance(t *testing.T) {
	for _, o := range MarkStatuses("") {
		if o.Selected != (o.Value == string(models.StatusMaintenance)) {
			t.Errorf("status %s selected=%v", o.Value, o.Selected)
		}
	}
}

func TestGenreDuplicateNameRedirectsToExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := testutil.SeedGenre(t, ctx, f.db, "Fantasy")

	page, err := f.catalog.Genres.Store(ctx, validation.Form{"name": {" Fantasy "}})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if page.Redirect != existing.URL() {
		t.Fatalf("expected redirect to existing genre, got %+v", page)
	}
	n, _ := f.repos.Genres.Count(ctx)
	if n != 1 {
		t.Errorf("expected no new genre, found %d", n)
	}

	other := testutil.SeedGenre(t, ctx, f.db, "Horror")
	page, err = f.catalog.Genres.Update(ctx, other.ID.String(), validation.Form{"name": {"Fantasy"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if page.Redirect != existing.URL() {
		t.Fatalf("expected redirect to existing genre, got %+v", page)
	}

	// keeping its own name is a normal update
	page, err = f.catalog.Genres.Update(ctx, other.ID.String(), validation.Form{"name": {"Horror"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if page.Redirect != other.URL() {
		t.Fatalf("expected redirect to the updated genre, got %+v", page)
	}

	// names differing only in case are distinct genres
	page, err = f.catalog.Genres.Store(ctx, validation.Form{"name": {"fantasy"}})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if page.Redirect == existing.URL() {
		t.Fatal("expected a new genre for a name differing in case")
	}
	if n, _ := f.repos.Genres.Count(ctx); n != 3 {
		t.Errorf("expected 3 genres, found %d", n)
	}
}

func TestBookInstanceStoreInvalidStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Iain", "Banks")
	book := testutil.SeedBook(t, ctx, f.db, "Look to Windward", author)

	page, err := f.catalog.BookInstances.Store(ctx, validation.Form{
		"book":    {book.ID.String()},
		"imprint": {"Orbit, 2000"},
		"status":  {"Lost"},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !page.Errors().Has("status") {
		t.Fatalf("expected a status error, got %v", page.Errors())
	}
	if opts := page.Data["books"].([]BookOption); len(opts) != 1 || !opts[0].Selected {
		t.Errorf("expected the submitted book selected, got %+v", opts)
	}

	page, err = f.catalog.BookInstances.Store(ctx, validation.Form{
		"book":    {book.ID.String()},
		"imprint": {"Orbit, 2000"},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !page.IsRedirect() {
		t.Fatalf("expected redirect, got errors %v", page.Errors())
	}
	if tasks := f.events.tasks(); len(tasks) != 1 || tasks[0] != "bookinstance.created" {
		t.Errorf("unexpected events %v", tasks)
	}
}

func TestBookSaveWaitsForAuthorDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author := testutil.SeedAuthor(t, ctx, f.db, "Frank", "Herbert")

	// hold the lock a running author delete would hold
	f.catalog.Books.locks.authors.Lock()

	done := make(chan *Page, 1)
	go func() {
		page, err := f.catalog.Books.Store(ctx, validation.Form{
			"title":   {"Dune"},
			"author":  {author.ID.String()},
			"summary": {"Spice"},
			"isbn":    {"9780441013593"},
		})
		if err != nil {
			t.Errorf("Store: %v", err)
		}
		done <- page
	}()

	select {
	case <-done:
		t.Fatal("book save must wait while an author delete is running")
	case <-time.After(50 * time.Millisecond):
	}

	// the delete removes the author before releasing the lock
	if err := f.repos.Authors.RemoveByID(ctx, author.ID); err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	f.catalog.Books.locks.authors.Unlock()

	select {
	case page := <-done:
		if page == nil || !page.Errors().Has("author") {
			t.Fatalf("expected the save to be refused for the deleted author, got %+v", page)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("book save did not resume")
	}
}
