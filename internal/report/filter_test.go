package report_test

import (
	"testing"
	"time"

	"github.com/trackops/trackd/internal/report"
	"github.com/trackops/trackd/pkg/models"
)

func sampleEntries() []models.Tracker {
	return []models.Tracker{
		{ID: 1, UserID: 7, ProjectID: 1, TaskID: 10, DateTime: millis(2025, time.April, 1)},
		{ID: 2, UserID: 8, ProjectID: 1, TaskID: 11, DateTime: millis(2025, time.April, 2)},
		{ID: 3, UserID: 7, ProjectID: 2, TaskID: 20, DateTime: millis(2025, time.April, 3)},
		{ID: 4, UserID: 9, ProjectID: 2, TaskID: 21, DateTime: millis(2025, time.May, 1)},
	}
}

func ids(entries []models.Tracker) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestFilterNoOp(t *testing.T) {
	in := sampleEntries()
	got := report.Filter(in, report.Filters{})
	if len(got) != len(in) {
		t.Fatalf("no-op filter dropped entries: %d != %d", len(got), len(in))
	}
	for i := range in {
		if got[i].ID != in[i].ID {
			t.Fatalf("no-op filter reordered entries at %d", i)
		}
	}
}

func TestFilterByAgent(t *testing.T) {
	got := report.Filter(sampleEntries(), report.Filters{AgentIDs: []string{"7"}})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected agent filter result: %v", ids(got))
	}
}

func TestFilterByProjectAndDateIntersection(t *testing.T) {
	// project 2 alone matches entries 3 and 4; the April range keeps only 3
	got := report.Filter(sampleEntries(), report.Filters{
		ProjectID: "2",
		DateFrom:  "2025-04-01",
		DateTo:    "2025-04-30",
	})
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected intersection {3}, got %v", ids(got))
	}
}

func TestFilterDateRangeInclusive(t *testing.T) {
	got := report.Filter(sampleEntries(), report.Filters{
		DateFrom: "2025-04-02",
		DateTo:   "2025-04-03",
	})
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("expected inclusive bounds {2,3}, got %v", ids(got))
	}
}

func TestFilterByTask(t *testing.T) {
	got := report.Filter(sampleEntries(), report.Filters{TaskID: "11"})
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected task filter result: %v", ids(got))
	}
	// a task outside the narrowed option set matches zero records
	if got := report.Filter(sampleEntries(), report.Filters{ProjectID: "1", TaskID: "20"}); len(got) != 0 {
		t.Fatalf("expected zero matches, got %v", ids(got))
	}
}

func TestFilterMalformedDateIsNoOp(t *testing.T) {
	got := report.Filter(sampleEntries(), report.Filters{DateFrom: "not-a-date"})
	if len(got) != 4 {
		t.Fatalf("malformed date should not filter, got %v", ids(got))
	}
}

func TestTasksForProject(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Tasks: []models.Task{{ID: 10}, {ID: 11}}},
		{ID: 2, Tasks: []models.Task{{ID: 20}}},
	}
	got := report.TasksForProject(projects, "1")
	if len(got) != 2 || got[0].ID != 10 {
		t.Fatalf("unexpected task options: %+v", got)
	}
	if got := report.TasksForProject(projects, ""); got != nil {
		t.Fatalf("expected nil options for empty project")
	}
	if got := report.TasksForProject(projects, "99"); got != nil {
		t.Fatalf("expected nil options for unknown project")
	}
}
