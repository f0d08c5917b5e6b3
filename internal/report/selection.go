package report

import "github.com/trackops/trackd/pkg/models"

// Field identifies which part of a Selection changed.
type Field int

const (
	FieldProject Field = iota
	FieldTask
	FieldAgent
)

// Selection is the cascading project/task/agent pick on an entry form
// together with the target derived from it. The invariant Apply maintains:
// TaskID belongs to ProjectID (or is zero), and BaseTarget reflects the
// current triple exactly (or is nil). A stale target is never left paired
// with a cleared task.
type Selection struct {
	ProjectID  int64
	TaskID     int64
	AgentID    int64
	BaseTarget *float64
}

// Catalog resolves lookups during a selection transition.
type Catalog interface {
	// TaskInProject returns the task when it belongs to the project,
	// nil otherwise.
	TaskInProject(projectID, taskID int64) *models.Task
	// AgentTenure returns the agent's tenure multiplier, 0 when unknown.
	AgentTenure(agentID int64) float64
}

// Apply returns the next selection after one field changes, clearing any
// dependent pick the change invalidates and recomputing the base target.
func Apply(cur Selection, field Field, value int64, cat Catalog) Selection {
	next := cur
	switch field {
	case FieldProject:
		next.ProjectID = value
	case FieldTask:
		next.TaskID = value
	case FieldAgent:
		next.AgentID = value
	}

	var task *models.Task
	if next.ProjectID != 0 && next.TaskID != 0 && cat != nil {
		task = cat.TaskInProject(next.ProjectID, next.TaskID)
	}
	if task == nil {
		next.TaskID = 0
		next.BaseTarget = nil
		return next
	}

	var tenure float64
	if next.AgentID != 0 && cat != nil {
		tenure = cat.AgentTenure(next.AgentID)
	}
	next.BaseTarget = BaseTarget(task, tenure)
	return next
}

// catalog is a slice-backed Catalog for callers that already hold the full
// project and user sets, like the dropdown payloads. Write paths that look
// up a single task and agent query the repositories directly instead.
type catalog struct {
	projects []models.Project
	tenures  map[int64]float64
}

// NewCatalog builds a Catalog over fetched projects (with nested tasks)
// and users.
func NewCatalog(projects []models.Project, users []models.User) Catalog {
	tenures := make(map[int64]float64, len(users))
	for i := range users {
		tenures[users[i].ID] = users[i].Tenure
	}
	return &catalog{projects: projects, tenures: tenures}
}

func (c *catalog) TaskInProject(projectID, taskID int64) *models.Task {
	for i := range c.projects {
		if c.projects[i].ID != projectID {
			continue
		}
		for j := range c.projects[i].Tasks {
			if c.projects[i].Tasks[j].ID == taskID {
				return &c.projects[i].Tasks[j]
			}
		}
	}
	return nil
}

func (c *catalog) AgentTenure(agentID int64) float64 {
	return c.tenures[agentID]
}
