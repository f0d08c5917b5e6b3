package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trackops/trackd/api"
	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/internal/validate"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository/mock"
)

func newTaskFixture(t *testing.T) (*api.TaskHandler, *mock.Mocks) {
	t.Helper()
	mocks := mock.NewMocks()
	v, err := validate.New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if _, err := mocks.Projects.CreateProject(nil, &models.Project{Name: "Apollo"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return api.NewTaskHandler(mocks.Tasks, mocks.Projects, v), mocks
}

func TestTaskAdd(t *testing.T) {
	h, _ := newTaskFixture(t)

	// Asst managers and up manage tasks; agents do not.
	body := map[string]any{"project_id": 1, "task_name": "Review", "task_target": 50}
	w := httptest.NewRecorder()
	h.Add(w, authed(jsonRequest(t, "/task/add", body), 1, auth.RoleAgent))
	if w.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("agent: expected 403 got %d", w.Result().StatusCode)
	}

	// The schema rejects a negative target.
	w = httptest.NewRecorder()
	h.Add(w, authed(jsonRequest(t, "/task/add", map[string]any{"project_id": 1, "task_name": "Review", "task_target": -1}), 1, auth.RoleAsstManager))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("negative target: expected 400 got %d", w.Result().StatusCode)
	}

	// Unknown project is a 404.
	w = httptest.NewRecorder()
	h.Add(w, authed(jsonRequest(t, "/task/add", map[string]any{"project_id": 9, "task_name": "Review"}), 1, auth.RoleAsstManager))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("unknown project: expected 404 got %d", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	h.Add(w, authed(jsonRequest(t, "/task/add", body), 1, auth.RoleAsstManager))
	res := w.Result()
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", res.StatusCode, string(data))
	}
	var env struct {
		Data models.Task `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Data.ID != 1 || env.Data.Target != 50 {
		t.Fatalf("unexpected task: %+v", env.Data)
	}
}

func TestTaskListUpdateDelete(t *testing.T) {
	h, mocks := newTaskFixture(t)
	if _, err := mocks.Tasks.CreateTask(nil, &models.Task{ProjectID: 1, Name: "Review", Target: 50}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	// Listing is open to agents; they need targets for the entry form.
	w := httptest.NewRecorder()
	h.List(w, authed(jsonRequest(t, "/task/list", map[string]any{"project_id": 1}), 2, auth.RoleAgent))
	res := w.Result()
	defer res.Body.Close()
	var env struct {
		Data []models.Task `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Name != "Review" {
		t.Fatalf("unexpected tasks: %+v", env.Data)
	}

	w = httptest.NewRecorder()
	h.Update(w, authed(jsonRequest(t, "/task/update", map[string]any{"task_id": 1, "project_id": 1, "task_name": "Audit", "task_target": 60}), 1, auth.RoleManager))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", w.Result().StatusCode)
	}
	k, _ := mocks.Tasks.GetTask(nil, 1)
	if k == nil || k.Name != "Audit" || k.Target != 60 {
		t.Fatalf("expected updated task, got %+v", k)
	}

	w = httptest.NewRecorder()
	h.Delete(w, authed(jsonRequest(t, "/task/delete", map[string]any{"task_id": 1}), 1, auth.RoleManager))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Result().StatusCode)
	}
	if k, _ := mocks.Tasks.GetTask(nil, 1); k != nil {
		t.Fatalf("expected task gone, got %+v", k)
	}
}
