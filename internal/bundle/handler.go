package bundle

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"assessment-games-go/internal/auth"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ListBundles(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetBundle(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	b, err := readBundle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if t := auth.GetTeacher(r.Context()); t != nil {
		b.CreatedBy = t.Subject
	}

	created, err := h.service.Create(r.Context(), b)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateBundle(w http.ResponseWriter, r *http.Request) {
	b, err := readBundle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), idParam(r), b)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), idParam(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes registers the bundle API. Reads are public; writes require a
// teacher token.
func (h *Handler) Routes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/bundles", h.ListBundles)
	router.HandlerFunc(http.MethodGet, "/bundles/:id", h.GetBundle)
	router.Handler(http.MethodPost, "/bundles", auth.RequireAuth(http.HandlerFunc(h.CreateBundle)))
	router.Handler(http.MethodPut, "/bundles/:id", auth.RequireAuth(http.HandlerFunc(h.UpdateBundle)))
	router.Handler(http.MethodDelete, "/bundles/:id", auth.RequireAuth(http.HandlerFunc(h.DeleteBundle)))
}

// parseFilter reads list query parameters. grade, tag and type may repeat
// or hold comma separated values.
func parseFilter(q url.Values) (Filter, error) {
	filter := NewFilter()
	for _, g := range multi(q, "grade") {
		filter.Grades = append(filter.Grades, Grade(strings.ToUpper(g)))
	}
	filter.Tags = multi(q, "tag")
	for _, t := range multi(q, "type") {
		filter.Types = append(filter.Types, MaterialType(t))
	}
	filter.Subject = q.Get("subject")
	filter.Search = q.Get("q")
	filter.Difficulty = Difficulty(q.Get("difficulty"))
	filter.Status = Status(q.Get("status"))

	switch f := SortField(q.Get("sort")); f {
	case "":
	case SortTitle, SortCreatedAt, SortUpdatedAt:
		filter.Sort.Field = f
		// titles read naturally A to Z
		filter.Sort.Desc = f != SortTitle
	default:
		return filter, errors.New("invalid sort")
	}
	switch q.Get("order") {
	case "":
	case "asc":
		filter.Sort.Desc = false
	case "desc":
		filter.Sort.Desc = true
	default:
		return filter, errors.New("invalid order")
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = n
	}
	return filter, nil
}

func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidBundle):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("bundle request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func readBundle(r *http.Request) (*Bundle, error) {
	b := &Bundle{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(b); err != nil {
		return nil, errors.New("invalid request body")
	}
	return b, nil
}

func idParam(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
