package services

import (
	"github.com/google/uuid"

	"github.com/camden-git/librarycatalog/models"
)

// GenreOption is a genre checkbox on the book form.
type GenreOption struct {
	GenreView
	Checked bool `json:"checked"`
}

// AuthorOption is an entry of the author select on the book form.
type AuthorOption struct {
	AuthorView
	Selected bool `json:"selected"`
}

// BookOption is an entry of the book select on the copy form.
type BookOption struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// StatusOption is an entry of the status select on the copy form.
type StatusOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// MarkGenres returns every genre of all, checked when its id is in selected.
func MarkGenres(all []models.Genre, selected []uuid.UUID) []GenreOption {
	set := idSet(selected)
	out := make([]GenreOption, 0, len(all))
	for _, g := range all {
		_, ok := set[g.ID]
		out = append(out, GenreOption{GenreView: genreView(g), Checked: ok})
	}
	return out
}

// MarkAuthors returns every author, selecting the one with id selected.
func MarkAuthors(all []models.Author, selected uuid.UUID) []AuthorOption {
	out := make([]AuthorOption, 0, len(all))
	for _, a := range all {
		out = append(out, AuthorOption{AuthorView: authorView(a), Selected: selected != uuid.Nil && a.ID == selected})
	}
	return out
}

// MarkBooks returns every book, selecting the one with id selected.
func MarkBooks(all []models.Book, selected uuid.UUID) []BookOption {
	out := make([]BookOption, 0, len(all))
	for _, b := range all {
		out = append(out, BookOption{ID: b.ID.String(), Title: b.Title, Selected: selected != uuid.Nil && b.ID == selected})
	}
	return out
}

// MarkStatuses lists every copy status, selecting current or the default.
func MarkStatuses(current models.BookInstanceStatus) []StatusOption {
	if current == "" {
		current = models.DefaultBookInstanceStatus
	}
	out := make([]StatusOption, 0, len(models.BookInstanceStatuses))
	for _, s := range models.BookInstanceStatuses {
		out = append(out, StatusOption{Value: string(s), Selected: s == current})
	}
	return out
}
