// Package api provides HTTP API handlers for the Kuchipudi gesture recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/kuchipudi/internal/store"
)

// templateStore is the repository shape shared by store.PoseRepository,
// store.SequenceRepository, and store.TrajectoryRepository, letting one
// handler implementation serve all three template resources.
type templateStore interface {
	Create(*store.TemplateRecord) error
	GetByID(id string) (*store.TemplateRecord, error)
	List() ([]*store.TemplateRecord, error)
	Update(*store.TemplateRecord) error
	Delete(id string) error
}

// TemplateHandler handles HTTP requests for one of the three template
// resources (poses, sequences, trajectories). definition is left as a raw
// JSON blob here: the handler never decodes it into a pose/sequence/
// trajectory struct, since the store treats definitions as opaque text and
// only the owning package (pose, sequence, trajectory) knows their shape.
type TemplateHandler struct {
	repo     templateStore
	basePath string
}

// NewTemplateHandler creates a handler for the given repository, mounted
// at basePath (e.g. "/api/poses").
func NewTemplateHandler(repo templateStore, basePath string) *TemplateHandler {
	return &TemplateHandler{repo: repo, basePath: basePath}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.basePath)
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createTemplateRequest struct {
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition"`
}

type updateTemplateRequest struct {
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition"`
}

type templateResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

func toTemplateResponse(t *store.TemplateRecord) templateResponse {
	return templateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Definition: json.RawMessage(t.Definition),
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	response := listTemplatesResponse{Templates: make([]templateResponse, 0, len(records))}
	for _, t := range records {
		response.Templates = append(response.Templates, toTemplateResponse(t))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	writeJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *TemplateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	definition := req.Definition
	if definition == nil {
		definition = json.RawMessage("{}")
	}

	t := &store.TemplateRecord{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Definition: string(definition),
	}

	if err := h.repo.Create(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateResponse(t))
}

func (h *TemplateHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	var req updateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Definition != nil {
		t.Definition = string(req.Definition)
	}

	if err := h.repo.Update(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	writeJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
