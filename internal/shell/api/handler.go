// Package api serves a read-only HTTP view of the generator catalog, the
// deployment descriptor of a project and its apply history.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultHistoryLimit = 50

// DeploymentReader reads the deployment descriptor of a project.
type DeploymentReader interface {
	ReadDeployment(root string) (*descriptor.Deployment, error)
}

// HistoryReader lists apply journal entries.
type HistoryReader interface {
	List(ctx context.Context, application string, limit int) ([]store.JournalEntry, error)
}

// Config holds the Handler's dependencies.
type Config struct {
	Registry   *generator.Registry
	Workspace  DeploymentReader
	ProjectDir string

	// Journal is optional; history requests fail with 503 when it is nil.
	Journal HistoryReader

	Logger *slog.Logger
}

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	registry   *generator.Registry
	workspace  DeploymentReader
	projectDir string
	journal    HistoryReader
	logger     *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		registry:   cfg.Registry,
		workspace:  cfg.Workspace,
		projectDir: cfg.ProjectDir,
		journal:    cfg.Journal,
		logger:     l.With("component", "api"),
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/generators", func(r chi.Router) {
			r.Get("/", h.handleListGenerators)
			r.Get("/{name}", h.handleGetGenerator)
		})
		r.Get("/enums/{id}", h.handleGetEnum)
		r.Get("/deployment", h.handleGetDeployment)
		r.Get("/history", h.handleHistory)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleListGenerators(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.Generators()
	if r.URL.Query().Get("capabilities") == "true" {
		infos = h.registry.Capabilities()
	}

	out := make([]GeneratorResponse, 0, len(infos))
	for _, info := range infos {
		resp := GeneratorResponse{Name: info.Name, Capability: info.IsCapability()}
		def, err := info.InfoDef()
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Title = def.Name
			resp.Description = def.Description
			resp.Category = def.Category()
		}
		out = append(out, resp)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetGenerator(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := h.registry.ByName(name)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error(), "unknown_generator")
		return
	}
	def, err := info.InfoDef()
	switch {
	case errors.Is(err, catalog.ErrMissingCatalog):
		h.writeError(w, http.StatusNotFound, err.Error(), "missing_catalog")
		return
	case err != nil:
		h.logger.Error("failed to load generator info", "generator", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error(), "catalog_error")
		return
	}
	h.writeJSON(w, http.StatusOK, GeneratorDetailResponse{ModuleInfoDef: def, Capability: info.IsCapability()})
}

func (h *Handler) handleGetEnum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	enums, err := h.registry.Enums()
	if err != nil {
		h.logger.Error("failed to load enums", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error(), "catalog_error")
		return
	}
	values, ok := enums.Lookup(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "enum not found: "+id, "unknown_enum")
		return
	}
	h.writeJSON(w, http.StatusOK, EnumResponse{ID: id, Values: values})
}

func (h *Handler) handleGetDeployment(w http.ResponseWriter, r *http.Request) {
	d, err := h.workspace.ReadDeployment(h.projectDir)
	if err != nil {
		h.logger.Error("failed to read deployment", "dir", h.projectDir, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error(), "read_failed")
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeError(w, http.StatusServiceUnavailable, "apply journal is disabled", "journal_disabled")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", "validation_error")
			return
		}
		limit = n
	}

	entries, err := h.journal.List(r.Context(), r.URL.Query().Get("application"), limit)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error(), "read_failed")
		return
	}
	if entries == nil {
		entries = []store.JournalEntry{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
