package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/app"
	"github.com/erazemk/najdeno/internal/model"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// ItemsHandler handles item report endpoints.
type ItemsHandler struct {
	Items          *app.ItemService
	MaxUploadBytes int64
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ItemFilter{
		Type:   q.Get("type"),
		Query:  q.Get("q"),
		UserID: q.Get("user"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	items, err := h.Items.List(r.Context(), filter)
	if err != nil {
		serviceError(w, r, err, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Items.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. It accepts multipart/form-data with an
// optional "image" file part, or a JSON body without an image.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	req, image, err := readCreateItem(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var imageReader io.Reader
	if image != nil {
		defer image.Close()
		imageReader = image
	}

	item, err := h.Items.Create(r.Context(), who, app.CreateItemRequest{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Contact:     req.Contact,
		Image:       imageReader,
	})
	if err != nil {
		serviceError(w, r, err, "failed to create item")
		return
	}

	slog.Info("item reported", "item", item.ID, "type", item.Type, "user", who.Username)
	jsonResponse(w, http.StatusCreated, item)
}

// readCreateItem decodes the item fields and the optional image from r.
func readCreateItem(r *http.Request) (createItemRequest, io.ReadCloser, error) {
	var req createItemRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := decodeJSON(r, &req)
		return req, nil, err
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return req, nil, err
	}
	req = createItemRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
		Contact:     r.FormValue("contact"),
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, err
	}
	return req, file, nil
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	who, ok := actor(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	item, err := h.Items.Delete(r.Context(), who, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, app.ErrForbidden) {
			slog.Warn("item delete denied", "item", r.PathValue("id"), "user", who.Username)
		}
		serviceError(w, r, err, "failed to delete item")
		return
	}

	slog.Info("item deleted", "item", item.ID, "user", who.Username)
	jsonMessage(w, http.StatusOK, "item deleted")
}
