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

type TaskHandler struct {
	taskRepo    repository.TaskRepo
	projectRepo repository.ProjectRepo
	validator   *validate.Validator
}

func NewTaskHandler(kr repository.TaskRepo, pr repository.ProjectRepo, v *validate.Validator) *TaskHandler {
	return &TaskHandler{taskRepo: kr, projectRepo: pr, validator: v}
}

func (h *TaskHandler) Add(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Check(r.Context(), "task_add", body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var t models.Task
	if err := json.Unmarshal(body, &t); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if p, err := h.projectRepo.GetProject(r.Context(), t.ProjectID); err != nil || p == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	id, err := h.taskRepo.CreateTask(r.Context(), &t)
	if err != nil {
		http.Error(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	t.ID = id

	writeJSON(w, dataEnvelope{Data: t}, http.StatusCreated)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validator.Check(r.Context(), "task_add", body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var t models.Task
	if err := json.Unmarshal(body, &t); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if t.ID <= 0 {
		http.Error(w, "task_id is required", http.StatusBadRequest)
		return
	}
	if existing, err := h.taskRepo.GetTask(r.Context(), t.ID); err != nil || existing == nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	if err := h.taskRepo.UpdateTask(r.Context(), &t); err != nil {
		http.Error(w, "Failed to update task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dataEnvelope{Data: t}, http.StatusOK)
}

type taskListRequest struct {
	ProjectID flexID `json:"project_id"`
}

// List returns the tasks of one project, targets included.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var req taskListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	projectID := req.ProjectID.Int64()
	if projectID <= 0 {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	tasks, err := h.taskRepo.ListTasksByProject(r.Context(), projectID)
	if err != nil {
		http.Error(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, dataEnvelope{Data: tasks}, http.StatusOK)
}

type taskDeleteRequest struct {
	TaskID flexID `json:"task_id"`
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireManage(w, r) {
		return
	}

	var req taskDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	id := req.TaskID.Int64()
	if id <= 0 {
		http.Error(w, "task_id is required", http.StatusBadRequest)
		return
	}

	if err := h.taskRepo.DeleteTask(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"message": "task deleted"}, http.StatusOK)
}

func (h *TaskHandler) requireManage(w http.ResponseWriter, r *http.Request) bool {
	_, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	if !auth.CapabilitiesFor(role).CanManageTasks {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
