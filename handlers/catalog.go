package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/librarycatalog/logger"
	"github.com/camden-git/librarycatalog/services"
	"github.com/camden-git/librarycatalog/validation"
)

// maxFormBytes bounds the size of a submitted form body.
const maxFormBytes = 1 << 20

// resource is the set of entry points every catalog resource offers.
type resource interface {
	List(ctx context.Context, sort string) (*services.Page, error)
	Detail(ctx context.Context, id string) (*services.Page, error)
	CreateForm(ctx context.Context) (*services.Page, error)
	Store(ctx context.Context, form validation.Form) (*services.Page, error)
	EditForm(ctx context.Context, id string) (*services.Page, error)
	Update(ctx context.Context, id string, form validation.Form) (*services.Page, error)
	DeleteConfirm(ctx context.Context, id string) (*services.Page, error)
	Destroy(ctx context.Context, id string) (*services.Page, error)
}

// CatalogHandler serves the catalog pages as JSON render models.
type CatalogHandler struct {
	Catalog *services.Catalog
	log     *logger.Logger
}

func NewCatalogHandler(catalog *services.Catalog, baseLog *logger.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, log: baseLog.With("handler", "CatalogHandler")}
}

// Routes registers the catalog routes on r. limit wraps every route that
// writes; it may be nil.
func (h *CatalogHandler) Routes(r chi.Router, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page, err := h.Catalog.Index.Home(r.Context())
		h.writePage(w, r, page, err)
	})
	h.mount(r, limit, "books", "book", h.Catalog.Books)
	h.mount(r, limit, "authors", "author", h.Catalog.Authors)
	h.mount(r, limit, "genres", "genre", h.Catalog.Genres)
	h.mount(r, limit, "bookinstances", "bookinstance", h.Catalog.BookInstances)
}

func (h *CatalogHandler) mount(r chi.Router, limit func(http.Handler) http.Handler, plural, singular string, res resource) {
	r.Get("/"+plural, func(w http.ResponseWriter, r *http.Request) {
		page, err := res.List(r.Context(), r.URL.Query().Get("sort"))
		h.writePage(w, r, page, err)
	})

	r.Route("/"+singular, func(r chi.Router) {
		r.Get("/create", func(w http.ResponseWriter, r *http.Request) {
			page, err := res.CreateForm(r.Context())
			h.writePage(w, r, page, err)
		})
		r.With(limit).Post("/create", func(w http.ResponseWriter, r *http.Request) {
			form, err := parseForm(w, r)
			if err != nil {
				WriteAPIError(w, http.StatusBadRequest, "invalid_form", err.Error())
				return
			}
			page, err := res.Store(r.Context(), form)
			h.writePage(w, r, page, err)
		})
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				page, err := res.Detail(r.Context(), chi.URLParam(r, "id"))
				h.writePage(w, r, page, err)
			})
			r.Get("/edit", func(w http.ResponseWriter, r *http.Request) {
				page, err := res.EditForm(r.Context(), chi.URLParam(r, "id"))
				h.writePage(w, r, page, err)
			})
			r.With(limit).Post("/edit", func(w http.ResponseWriter, r *http.Request) {
				form, err := parseForm(w, r)
				if err != nil {
					WriteAPIError(w, http.StatusBadRequest, "invalid_form", err.Error())
					return
				}
				page, err := res.Update(r.Context(), chi.URLParam(r, "id"), form)
				h.writePage(w, r, page, err)
			})
			r.Get("/delete", func(w http.ResponseWriter, r *http.Request) {
				page, err := res.DeleteConfirm(r.Context(), chi.URLParam(r, "id"))
				h.writePage(w, r, page, err)
			})
			r.With(limit).Post("/delete", func(w http.ResponseWriter, r *http.Request) {
				page, err := res.Destroy(r.Context(), chi.URLParam(r, "id"))
				h.writePage(w, r, page, err)
			})
		})
	})
}

// writePage maps the outcome of a catalog operation onto a response:
// redirects become 303, re-rendered forms 422, missing records 404 and any
// other failure 500.
func (h *CatalogHandler) writePage(w http.ResponseWriter, r *http.Request, page *services.Page, err error) {
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		writeServerError(w, r, h.log, err)
		return
	}
	if page.IsRedirect() {
		http.Redirect(w, r, page.Redirect, http.StatusSeeOther)
		return
	}
	status := http.StatusOK
	if len(page.Errors()) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, page)
}

// parseForm reads a url-encoded or JSON request body.
func parseForm(w http.ResponseWriter, r *http.Request) (validation.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return validation.FormFromMap(raw), nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return validation.FormFromValues(r.PostForm), nil
}
