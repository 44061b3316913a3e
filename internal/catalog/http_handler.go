package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// parseQuery reads q, genre, owner, sort and page. A missing page is 1.
func parseQuery(r *http.Request) (Query, error) {
	values := r.URL.Query()

	q := Query{
		Q:       values.Get("q"),
		Genre:   values.Get("genre"),
		OwnerID: values.Get("owner"),
		Sort:    Sort(values.Get("sort")),
		Page:    1,
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, apperror.Validationf("page must be an integer")
		}
		q.Page = page
	}
	return q, nil
}

// List handles GET /v1/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, page.Items, map[string]any{
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

// Detail handles GET /v1/books/{id}
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.WriteError(w, r, apperror.NotFoundf("book not found"))
		return
	}

	detail, err := h.service.Detail(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, detail, nil)
}

// Genres handles GET /v1/genres
func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, genres, nil)
}
