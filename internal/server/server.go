// Package server is the HTTP boundary: the public ping endpoint plus the
// administrative check API. Authorization for the admin routes is expected
// to happen in front of this server (reverse proxy, gateway); the handlers
// assume trusted callers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
	"github.com/pulsewatch/pulsewatch/internal/services/admin"
	"github.com/pulsewatch/pulsewatch/internal/services/pings"
)

// CachedLister serves the unpaginated list endpoint from the snapshot
// cache; paginated reads go straight to the store.
type CachedLister interface {
	List(ctx context.Context) ([]*check.Check, error)
}

type Server struct {
	repo   check.Repo
	cache  CachedLister
	pings  *pings.Usecase
	admin  *admin.Usecase
	router chi.Router
	logger *zap.Logger
}

func New(repo check.Repo, cache CachedLister, pu *pings.Usecase, au *admin.Usecase, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		repo:   repo,
		cache:  cache,
		pings:  pu,
		admin:  au,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Router() chi.Router { return s.router }

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.Post("/api/pings/{token}", s.handlePing)

	r.Route("/api/checks", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{token}", s.handleGet)
		r.Delete("/{token}", s.handleDelete)
		r.Post("/{token}/maintenance", s.handleToggleMaintenance)
		r.Post("/{token}/fail", s.handleFail)
	})
}

type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: msg})
}

func (s *Server) writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, check.ErrNotFound):
		writeError(w, http.StatusNotFound, "check not found")
	case errors.Is(err, check.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		s.logger.Error(op, zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "storage failure, retry")
	}
}

// --- Handlers ---

type pingRequest struct {
	DurationMS *int64 `json:"duration_ms"`
}

type pingResponse struct {
	Outcome string       `json:"outcome"`
	Check   *check.Check `json:"check"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req pingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	if req.DurationMS == nil {
		if v := r.URL.Query().Get("duration_ms"); v != "" {
			d, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid duration_ms")
				return
			}
			req.DurationMS = &d
		}
	}

	c, outcome, err := s.pings.Record(r.Context(), token, req.DurationMS)
	if err != nil {
		s.writeRepoError(w, "record ping", err)
		return
	}
	resp := pingResponse{Outcome: "accepted", Check: c}
	if outcome == pings.MaintenanceNoop {
		resp.Outcome = "maintenance"
	}
	writeJSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Grace    string `json:"grace"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := s.admin.Create(r.Context(), req.Name, req.Schedule, req.Grace)
	if err != nil {
		s.writeRepoError(w, "create check", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type pageResponse struct {
	Checks []*check.Check `json:"checks"`
	Total  int            `json:"total"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("limit") == "" && q.Get("offset") == "" {
		list, err := s.cache.List(r.Context())
		if err != nil {
			s.writeRepoError(w, "list checks", err)
			return
		}
		writeJSON(w, http.StatusOK, pageResponse{Checks: list, Total: len(list)})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	list, total, err := s.repo.ListPage(r.Context(), limit, offset)
	if err != nil {
		s.writeRepoError(w, "list checks page", err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{Checks: list, Total: total})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.repo.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeRepoError(w, "get check", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Delete(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.writeRepoError(w, "delete check", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleToggleMaintenance(w http.ResponseWriter, r *http.Request) {
	c, err := s.admin.ToggleMaintenance(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeRepoError(w, "toggle maintenance", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type failRequest struct {
	Reason *string `json:"reason"`
}

func (s *Server) handleFail(w http.ResponseWriter, r *http.Request) {
	var req failRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}

	c, err := s.admin.RecordFailure(r.Context(), chi.URLParam(r, "token"), req.Reason)
	if err != nil {
		s.writeRepoError(w, "record failure", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
