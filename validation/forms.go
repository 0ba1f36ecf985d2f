package validation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/camden-git/librarycatalog/models"
)

// Form field names, shared with the HTTP layer.
const (
	FieldFirstName   = "first_name"
	FieldFamilyName  = "family_name"
	FieldDateOfBirth = "date_of_birth"
	FieldDateOfDeath = "date_of_death"
	FieldName        = "name"
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldSummary     = "summary"
	FieldISBN        = "isbn"
	FieldGenre       = "genre"
	FieldBook        = "book"
	FieldImprint     = "imprint"
	FieldStatus      = "status"
	FieldDueBack     = "due_back"
)

var authorRules = Chain(
	Field(FieldFirstName, Trim(), NotEmpty("First name must be specified."), MaxLength(100, "First name must be at most 100 characters."), Escape()),
	Field(FieldFamilyName, Trim(), NotEmpty("Family name must be specified."), MaxLength(100, "Family name must be at most 100 characters."), Escape()),
	Field(FieldDateOfBirth, Trim(), OptionalISODate("Invalid date of birth")),
	Field(FieldDateOfDeath, Trim(), OptionalISODate("Invalid date of death")),
)

var genreRules = Chain(
	Field(FieldName, Trim(), Length(3, 100, "Genre name must contain at least 3 characters"), Escape()),
)

var bookRules = Chain(
	Field(FieldGenre, Sequence(), Escape()),
	Field(FieldTitle, Trim(), NotEmpty("Title must not be empty."), Escape()),
	Field(FieldAuthor, Trim(), NotEmpty("Author must not be empty."), Escape()),
	Field(FieldSummary, Trim(), NotEmpty("Summary must not be empty."), Escape()),
	Field(FieldISBN, Trim(), NotEmpty("ISBN must not be empty"), Escape()),
)

var bookInstanceRules = Chain(
	Field(FieldBook, Trim(), NotEmpty("Book must be specified"), Escape()),
	Field(FieldImprint, Trim(), NotEmpty("Imprint must be specified"), Escape()),
	Field(FieldStatus, Escape()),
	Field(FieldDueBack, Trim(), OptionalISODate("Invalid date")),
)

// parseDate reads a value already rewritten by OptionalISODate.
func parseDate(f Form, field string) *datatypes.Date {
	v := f.Get(field)
	if v == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

// parseRef reads a reference field. Blank values give uuid.Nil and no error;
// emptiness is the rule chain's concern.
func parseRef(f Form, field, msg string, errs *Errors) uuid.UUID {
	v := f.Get(field)
	if v == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: msg})
		return uuid.Nil
	}
	return id
}

// DecodeAuthor validates an author form and returns the draft, the cleaned
// values it was built from and every error found. Values that failed to parse
// are only in the cleaned form.
func DecodeAuthor(f Form) (models.Author, Form, Errors) {
	clean, errs := authorRules(f)
	author := models.Author{
		FirstName:   clean.Get(FieldFirstName),
		FamilyName:  clean.Get(FieldFamilyName),
		DateOfBirth: parseDate(clean, FieldDateOfBirth),
		DateOfDeath: parseDate(clean, FieldDateOfDeath),
	}
	return author, clean, errs
}

// DecodeGenre validates a genre form.
func DecodeGenre(f Form) (models.Genre, Errors) {
	clean, errs := genreRules(f)
	return models.Genre{Name: clean.Get(FieldName)}, errs
}

// DecodeBook validates a book form. Genre references are carried as genres
// holding only their ID.
func DecodeBook(f Form) (models.Book, Form, Errors) {
	clean, errs := bookRules(f)
	book := models.Book{
		Title:   clean.Get(FieldTitle),
		Summary: clean.Get(FieldSummary),
		ISBN:    clean.Get(FieldISBN),
	}
	book.AuthorID = parseRef(clean, FieldAuthor, "Author is not a valid reference.", &errs)

	genreInvalid := false
	for _, raw := range clean.Values(FieldGenre) {
		id, err := uuid.Parse(raw)
		if err != nil {
			genreInvalid = true
			continue
		}
		book.Genres = append(book.Genres, models.Genre{ID: id})
	}
	if genreInvalid {
		errs = append(errs, FieldError{Field: FieldGenre, Message: "Genre is not a valid reference."})
	}
	return book, clean, errs
}

// DecodeBookInstance validates a copy form. An empty status is left for the
// model default.
func DecodeBookInstance(f Form) (models.BookInstance, Form, Errors) {
	clean, errs := bookInstanceRules(f)
	instance := models.BookInstance{
		Imprint: clean.Get(FieldImprint),
		Status:  models.BookInstanceStatus(clean.Get(FieldStatus)),
	}
	instance.BookID = parseRef(clean, FieldBook, "Book is not a valid reference.", &errs)
	if d := parseDate(clean, FieldDueBack); d != nil {
		instance.DueBack = *d
	}
	return instance, clean, errs
}
