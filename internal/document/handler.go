package document

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trameserve/internal/document/model"
	"trameserve/internal/document/repository"
	"trameserve/internal/document/service"
	"trameserve/pkg/logger"
)

type Handler struct {
	Service *service.DocumentService
}

func NewHandler(svc *service.DocumentService) *Handler {
	return &Handler{Service: svc}
}

// Save handles POST /api/documents/save: idempotent upsert by slug.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.Service.Save(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Failed to save document %q: %v", req.Slug, err)
		http.Error(w, "Failed to save document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.SaveResponse{Document: doc})
}

// List handles GET /api/documents. A storage failure degrades to an
// empty list rather than a hard error; the failure itself is already
// logged at the repository layer.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.List(r.Context())
	if err != nil {
		docs = nil
	}
	if docs == nil {
		docs = []model.Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.ListResponse{Documents: docs})
}

// GetByID handles GET /api/documents/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid document id", http.StatusBadRequest)
		return
	}

	doc, err := h.Service.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// Delete handles DELETE /api/documents/{slug}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	err := h.Service.DeleteBySlug(r.Context(), slug)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
