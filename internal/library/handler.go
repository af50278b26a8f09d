package library

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/tomasen/realip"

	"assessment-games-go/internal/auth"
	"assessment-games-go/internal/game"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	filter := NewFilter()
	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		at := game.AssessmentType(t)
		filter.Type = &at
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = n
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Get(r.Context(), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeAssessment(w, r, http.StatusOK, a)
}

func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := readAssessment(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeAssessment(w, r, http.StatusCreated, created)
}

func (h *Handler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := readAssessment(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), idParam(r), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeAssessment(w, r, http.StatusOK, updated)
}

func (h *Handler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), idParam(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes registers the assessment API. Reads are public; writes require a
// teacher token.
func (h *Handler) Routes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/assessments", h.ListAssessments)
	router.HandlerFunc(http.MethodGet, "/assessments/:id", h.GetAssessment)
	router.Handler(http.MethodPost, "/assessments", auth.RequireAuth(http.HandlerFunc(h.CreateAssessment)))
	router.Handler(http.MethodPut, "/assessments/:id", auth.RequireAuth(http.HandlerFunc(h.UpdateAssessment)))
	router.Handler(http.MethodDelete, "/assessments/:id", auth.RequireAuth(http.HandlerFunc(h.DeleteAssessment)))
}

// Routes is implemented by handlers that mount their own endpoints
type Routes interface {
	Routes(router *httprouter.Router)
}

// NewRouter wires the library, auth and any extra endpoints behind request
// logging and token parsing.
func NewRouter(h *Handler, authService *auth.Service, logger *slog.Logger, extra ...Routes) http.Handler {
	router := httprouter.New()
	h.Routes(router)
	for _, r := range extra {
		r.Routes(router)
	}

	authHandler := auth.NewHandler(authService)
	router.HandlerFunc(http.MethodPost, "/auth/login", authHandler.Login)
	router.HandlerFunc(http.MethodPost, "/auth/refresh", authHandler.RefreshToken)
	router.Handler(http.MethodGet, "/auth/me", auth.RequireAuth(http.HandlerFunc(authHandler.Me)))
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return LogRequests(logger, authService.Middleware(router))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests logs every request with its client address and status.
func LogRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"client_ip", realip.FromRequest(r),
			"duration", time.Since(start))
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidAssessment), errors.Is(err, game.ErrUnknownAssessmentType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("assessment request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeAssessment(w http.ResponseWriter, r *http.Request, status int, a game.Assessment) {
	body, err := game.EncodeAssessment(a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func readAssessment(r *http.Request) (game.Assessment, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return game.DecodeAssessment(body)
}

func idParam(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
