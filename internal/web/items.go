package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/model"
)

type indexData struct {
	PageData
	Items   []model.Item
	Query   string
	Type    string
	Contact string
}

// IndexPage handles GET /.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	q := r.URL.Query()

	data := &indexData{
		PageData: PageData{Title: "Lost & Found", User: claims, Success: notices[q.Get("done")]},
		Query:    q.Get("q"),
		Type:     q.Get("type"),
	}
	s.renderIndex(w, r, http.StatusOK, data)
}

// renderIndex fills in the listing and the reporter's contact, then renders
// the index page.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, data *indexData) {
	items, err := s.Items.List(r.Context(), model.ItemFilter{Type: data.Type, Query: data.Query})
	if err != nil {
		if data.Error == "" {
			data.Error = userMessage(err)
		}
		data.Type = ""
		items, err = s.Items.List(r.Context(), model.ItemFilter{Query: data.Query})
		if err != nil {
			slog.Error("failed to list items", "error", err)
		}
	}
	data.Items = items

	if data.User != nil && data.Contact == "" {
		user, err := s.Accounts.Profile(r.Context(), data.User.UserID)
		if err != nil {
			slog.Warn("failed to load profile for report form", "user", data.User.Username, "error", err)
		} else {
			data.Contact = user.Contact
		}
	}

	s.Templates.RenderStatus(w, status, "index.html", data)
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, http.StatusRequestEntityTooLarge, "The photo is too large.")
			return
		}
		s.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	req := app.CreateItemRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
		Contact:     r.FormValue("contact"),
	}

	var image io.Reader
	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.renderError(w, r, http.StatusBadRequest, "The photo could not be read.")
		return
	}
	req.Image = image

	who := actor(r)
	item, err := s.Items.Create(r.Context(), who, req)
	if err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, &indexData{
			PageData: PageData{Title: "Lost & Found", User: GetWebClaims(r.Context()), Error: userMessage(err)},
			Contact:  req.Contact,
		})
		return
	}

	slog.Info("item reported", "item", item.ID, "type", item.Type, "user", who.Username, "via", "web")
	http.Redirect(w, r, "/?done=reported", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	who := actor(r)
	item, err := s.Items.Delete(r.Context(), who, r.PathValue("id"))
	switch {
	case errors.Is(err, app.ErrForbidden):
		slog.Warn("item delete denied", "item", r.PathValue("id"), "user", who.Username, "via", "web")
		s.renderError(w, r, http.StatusForbidden, userMessage(err))
		return
	case errors.Is(err, app.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, userMessage(err))
		return
	case err != nil:
		s.renderError(w, r, http.StatusInternalServerError, userMessage(err))
		return
	}

	slog.Info("item deleted", "item", item.ID, "user", who.Username, "via", "web")
	http.Redirect(w, r, "/?done=deleted", http.StatusSeeOther)
}
