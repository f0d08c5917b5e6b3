package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

type DropdownHandler struct {
	projectRepo repository.ProjectRepo
	taskRepo    repository.TaskRepo
	userRepo    repository.UserRepo
}

func NewDropdownHandler(pr repository.ProjectRepo, kr repository.TaskRepo, ur repository.UserRepo) *DropdownHandler {
	return &DropdownHandler{projectRepo: pr, taskRepo: kr, userRepo: ur}
}

type dropdownRequest struct {
	Type      string `json:"dropdown_type"`
	ProjectID flexID `json:"project_id,omitempty"`
}

// Get serves selector option lists. The dropdown_type values mirror what
// the dashboard client sends; "projects with tasks" nests every project's
// tasks with their targets so the client can cascade without extra calls.
func (h *DropdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req dropdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch strings.ToLower(strings.TrimSpace(req.Type)) {
	case "projects with tasks":
		projects, err := h.projectRepo.ListProjectsWithTasks(ctx)
		if err != nil {
			http.Error(w, "Failed to list projects", http.StatusInternalServerError)
			return
		}
		if projects == nil {
			projects = []models.Project{}
		}
		writeJSON(w, dataEnvelope{Data: projects}, http.StatusOK)

	case "task":
		projectID := req.ProjectID.Int64()
		if projectID <= 0 {
			http.Error(w, "project_id is required", http.StatusBadRequest)
			return
		}
		tasks, err := h.taskRepo.ListTasksByProject(ctx, projectID)
		if err != nil {
			http.Error(w, "Failed to list tasks", http.StatusInternalServerError)
			return
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		writeJSON(w, dataEnvelope{Data: tasks}, http.StatusOK)

	case "agent":
		h.usersByRole(w, r, auth.RoleAgent)
	case "qa":
		h.usersByRole(w, r, auth.RoleQA)
	case "asst project manager":
		h.usersByRole(w, r, auth.RoleAsstManager)
	case "project manager":
		h.usersByRole(w, r, auth.RoleManager)

	default:
		http.Error(w, "Unknown dropdown_type", http.StatusBadRequest)
	}
}

func (h *DropdownHandler) usersByRole(w http.ResponseWriter, r *http.Request, role auth.Role) {
	users, err := h.userRepo.ListUsersByRole(r.Context(), int64(role))
	if err != nil {
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, dataEnvelope{Data: users}, http.StatusOK)
}
