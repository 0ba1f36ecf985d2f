package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/camden-git/librarycatalog/models"
	"github.com/camden-git/librarycatalog/validation"
)

// Views expose stored fields together with the derived ones a page shows.
// Reference fields hold the submitted or stored id; the expanded record is
// attached alongside when it was populated.

type AuthorView struct {
	ID                   string `json:"id,omitempty"`
	FirstName            string `json:"first_name"`
	FamilyName           string `json:"family_name"`
	DateOfBirth          string `json:"date_of_birth"`
	DateOfDeath          string `json:"date_of_death"`
	Name                 string `json:"name"`
	Lifespan             string `json:"lifespan"`
	DateOfBirthFormatted string `json:"date_of_birth_formatted"`
	DateOfDeathFormatted string `json:"date_of_death_formatted"`
	URL                  string `json:"url,omitempty"`
}

type GenreView struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type BookView struct {
	ID         string      `json:"id,omitempty"`
	Title      string      `json:"title"`
	Author     string      `json:"author"`
	Summary    string      `json:"summary"`
	ISBN       string      `json:"isbn"`
	Genre      []string    `json:"genre"`
	URL        string      `json:"url,omitempty"`
	AuthorInfo *AuthorView `json:"author_info,omitempty"`
	GenreInfo  []GenreView `json:"genre_info,omitempty"`
}

type BookInstanceView struct {
	ID               string    `json:"id,omitempty"`
	Book             string    `json:"book"`
	Imprint          string    `json:"imprint"`
	Status           string    `json:"status"`
	DueBack          string    `json:"due_back"`
	DueBackFormatted string    `json:"due_back_formatted"`
	URL              string    `json:"url,omitempty"`
	BookInfo         *BookView `json:"book_info,omitempty"`
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func isoDate(d *datatypes.Date) string {
	if d == nil || time.Time(*d).IsZero() {
		return ""
	}
	return time.Time(*d).Format(validation.DateLayout)
}

func authorView(a models.Author) AuthorView {
	v := AuthorView{
		ID:                   idString(a.ID),
		FirstName:            a.FirstName,
		FamilyName:           a.FamilyName,
		DateOfBirth:          isoDate(a.DateOfBirth),
		DateOfDeath:          isoDate(a.DateOfDeath),
		Name:                 a.Name(),
		Lifespan:             a.Lifespan(),
		DateOfBirthFormatted: a.DateOfBirthFormatted(),
		DateOfDeathFormatted: a.DateOfDeathFormatted(),
	}
	if a.ID != uuid.Nil {
		v.URL = a.URL()
	}
	return v
}

// submittedAuthorView shows a rejected author form. Dates that failed to parse
// are shown as they were sent.
func submittedAuthorView(draft models.Author, clean validation.Form) AuthorView {
	v := authorView(draft)
	if clean != nil {
		v.DateOfBirth = clean.Get(validation.FieldDateOfBirth)
		v.DateOfDeath = clean.Get(validation.FieldDateOfDeath)
	}
	return v
}

func authorViews(authors []models.Author) []AuthorView {
	out := make([]AuthorView, 0, len(authors))
	for _, a := range authors {
		out = append(out, authorView(a))
	}
	return out
}

func genreView(g models.Genre) GenreView {
	v := GenreView{ID: idString(g.ID), Name: g.Name}
	if g.ID != uuid.Nil {
		v.URL = g.URL()
	}
	return v
}

func genreViews(genres []models.Genre) []GenreView {
	out := make([]GenreView, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreView(g))
	}
	return out
}

func bookView(b models.Book) BookView {
	v := BookView{
		ID:      idString(b.ID),
		Title:   b.Title,
		Author:  idString(b.AuthorID),
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genre:   make([]string, 0, len(b.Genres)),
	}
	for _, id := range b.GenreIDs() {
		v.Genre = append(v.Genre, id.String())
	}
	if b.ID != uuid.Nil {
		v.URL = b.URL()
	}
	if b.Author != nil {
		av := authorView(*b.Author)
		v.AuthorInfo = &av
	}
	// genres carrying only an id are references from a draft, not populated records
	for _, g := range b.Genres {
		if g.Name != "" {
			v.GenreInfo = append(v.GenreInfo, genreView(g))
		}
	}
	return v
}

// submittedBookView shows a rejected book form with the author and genre
// references as they were sent, valid or not.
func submittedBookView(draft models.Book, clean validation.Form) BookView {
	v := bookView(draft)
	if clean != nil {
		v.Author = clean.Get(validation.FieldAuthor)
		v.Genre = append(make([]string, 0), clean.Values(validation.FieldGenre)...)
	}
	return v
}

func bookViews(books []models.Book) []BookView {
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		out = append(out, bookView(b))
	}
	return out
}

func bookInstanceView(bi models.BookInstance) BookInstanceView {
	v := BookInstanceView{
		ID:      idString(bi.ID),
		Book:    idString(bi.BookID),
		Imprint: bi.Imprint,
		Status:  string(bi.Status),
	}
	if !time.Time(bi.DueBack).IsZero() {
		v.DueBack = isoDate(&bi.DueBack)
		v.DueBackFormatted = bi.DueBackFormatted()
	}
	if bi.ID != uuid.Nil {
		v.URL = bi.URL()
	}
	if bi.Book != nil {
		bv := bookView(*bi.Book)
		v.BookInfo = &bv
	}
	return v
}

// submittedBookInstanceView shows a rejected copy form with the book
// reference and due date as they were sent.
func submittedBookInstanceView(draft models.BookInstance, clean validation.Form) BookInstanceView {
	v := bookInstanceView(draft)
	if clean != nil {
		v.Book = clean.Get(validation.FieldBook)
		v.DueBack = clean.Get(validation.FieldDueBack)
	}
	return v
}

func bookInstanceViews(instances []models.BookInstance) []BookInstanceView {
	out := make([]BookInstanceView, 0, len(instances))
	for _, bi := range instances {
		out = append(out, bookInstanceView(bi))
	}
	return out
}
