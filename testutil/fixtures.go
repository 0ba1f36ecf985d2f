package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/librarycatalog/models"
)

func Date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func SeedAuthor(tb testing.TB, ctx context.Context, db *gorm.DB, first, family string) *models.Author {
	tb.Helper()
	a := &models.Author{FirstName: first, FamilyName: family}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed author: %v", err)
	}
	return a
}

func SeedGenre(tb testing.TB, ctx context.Context, db *gorm.DB, name string) *models.Genre {
	tb.Helper()
	g := &models.Genre{Name: name}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed genre: %v", err)
	}
	return g
}

func SeedBook(tb testing.TB, ctx context.Context, db *gorm.DB, title string, author *models.Author, genres ...*models.Genre) *models.Book {
	tb.Helper()
	b := &models.Book{Title: title, AuthorID: author.ID, Summary: "summary of " + title, ISBN: "978-" + title}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(b).Error; err != nil {
		tb.Fatalf("seed book: %v", err)
	}
	for _, g := range genres {
		link := models.BookGenre{BookID: b.ID, GenreID: g.ID}
		if err := db.WithContext(ctx).Create(&link).Error; err != nil {
			tb.Fatalf("seed book genre: %v", err)
		}
	}
	return b
}

func SeedBookInstance(tb testing.TB, ctx context.Context, db *gorm.DB, book *models.Book, status models.BookInstanceStatus) *models.BookInstance {
	tb.Helper()
	bi := &models.BookInstance{BookID: book.ID, Imprint: "First edition", Status: status, DueBack: Date(2030, time.January, 1)}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(bi).Error; err != nil {
		tb.Fatalf("seed book instance: %v", err)
	}
	return bi
}
