package services

import "github.com/camden-git/librarycatalog/validation"

// Model is the data handed to a view, keyed by stable names such as
// "title", "author", "books" and "errors".
type Model map[string]any

// Page is the result of a catalog operation: either a view to render with
// its model, or a location to redirect to.
type Page struct {
	View     string `json:"view"`
	Data     Model  `json:"data"`
	Redirect string `json:"-"`
}

func render(view, title string, data Model) *Page {
	if data == nil {
		data = Model{}
	}
	data["title"] = title
	return &Page{View: view, Data: data}
}

func redirect(location string) *Page {
	return &Page{Redirect: location}
}

// IsRedirect reports whether the page is a redirect.
func (p *Page) IsRedirect() bool {
	return p.Redirect != ""
}

// Errors returns the validation errors carried by a re-rendered form.
func (p *Page) Errors() validation.Errors {
	if p.Data == nil {
		return nil
	}
	errs, _ := p.Data["errors"].(validation.Errors)
	return errs
}

// withErrors adds errs to the page model when there are any.
func (p *Page) withErrors(errs validation.Errors) *Page {
	if len(errs) > 0 {
		p.Data["errors"] = errs
	}
	return p
}
