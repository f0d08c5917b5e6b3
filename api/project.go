package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/internal/validate"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

type ProjectHandler struct {
	projectRepo repository.ProjectRepo
	validator   *validate.Validator
}

func NewProjectHandler(pr repository.ProjectRepo, v *validate.Validator) *ProjectHandler {
	return &ProjectHandler{projectRepo: pr, validator: v}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Check(r.Context(), "project_create", body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var p models.Project
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	id, err := h.projectRepo.CreateProject(r.Context(), &p)
	if err != nil {
		http.Error(w, "Failed to create project", http.StatusInternalServerError)
		return
	}
	p.ID = id

	writeJSON(w, dataEnvelope{Data: p}, http.StatusCreated)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Check(r.Context(), "project_create", body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var p models.Project
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if p.ID <= 0 {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}
	if existing, err := h.projectRepo.GetProject(r.Context(), p.ID); err != nil || existing == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	if err := h.projectRepo.UpdateProject(r.Context(), &p); err != nil {
		http.Error(w, "Failed to update project", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dataEnvelope{Data: p}, http.StatusOK)
}

// List returns all projects with their assignment lists. Open to every
// authenticated user; the dashboard needs it for selectors.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.ListProjects(r.Context())
	if err != nil {
		http.Error(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	writeJSON(w, dataEnvelope{Data: projects}, http.StatusOK)
}

type projectDeleteRequest struct {
	ProjectID flexID `json:"project_id"`
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	var req projectDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	id := req.ProjectID.Int64()
	if id <= 0 {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	if err := h.projectRepo.DeleteProject(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"message": "project deleted"}, http.StatusOK)
}

func (h *ProjectHandler) requireManage(w http.ResponseWriter, r *http.Request) bool {
	_, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	if !auth.CapabilitiesFor(role).CanManageProjects {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
