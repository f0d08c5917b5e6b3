package report

import (
	"strconv"
	"time"

	"github.com/trackops/trackd/pkg/models"
)

// Filters narrows a tracker set. Every dimension is optional; an empty
// dimension matches everything and active dimensions combine with AND.
// Ids are strings because callers pass them through from request payloads
// where numeric and string forms are used interchangeably.
type Filters struct {
	AgentIDs  []string `json:"agent_ids,omitempty"`
	ProjectID string   `json:"project_id,omitempty"`
	TaskID    string   `json:"task_id,omitempty"`
	DateFrom  string   `json:"date_from,omitempty"` // YYYY-MM-DD, inclusive
	DateTo    string   `json:"date_to,omitempty"`   // YYYY-MM-DD, inclusive
}

// Filter returns the entries matching every active dimension of f,
// preserving input order. Malformed filter values degrade to no-ops or to
// dimensions that match nothing; Filter never fails.
func Filter(entries []models.Tracker, f Filters) []models.Tracker {
	agents := make(map[string]struct{}, len(f.AgentIDs))
	for _, id := range f.AgentIDs {
		if id != "" {
			agents[id] = struct{}{}
		}
	}
	from, fromOK := parseDay(f.DateFrom)
	to, toOK := parseDay(f.DateTo)

	out := make([]models.Tracker, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if len(agents) > 0 {
			if _, ok := agents[strconv.FormatInt(e.UserID, 10)]; !ok {
				continue
			}
		}
		if f.ProjectID != "" && f.ProjectID != strconv.FormatInt(e.ProjectID, 10) {
			continue
		}
		if f.TaskID != "" && f.TaskID != strconv.FormatInt(e.TaskID, 10) {
			continue
		}
		if fromOK || toOK {
			day := time.UnixMilli(e.DateTime).UTC().Truncate(24 * time.Hour)
			if fromOK && day.Before(from) {
				continue
			}
			if toOK && day.After(to) {
				continue
			}
		}
		out = append(out, *e)
	}
	return out
}

// TasksForProject narrows the task options offered alongside a project
// filter. An empty or unknown project id yields no options; a task filter
// outside the returned set is a filter that matches zero records, not an
// error.
func TasksForProject(projects []models.Project, projectID string) []models.Task {
	if projectID == "" {
		return nil
	}
	for i := range projects {
		if strconv.FormatInt(projects[i].ID, 10) == projectID {
			return projects[i].Tasks
		}
	}
	return nil
}

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
