package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// Shift values accepted on a tracker entry.
const (
	ShiftDay   = "day"
	ShiftNight = "night"
)

// MaxNoteLen is the character limit for a tracker note.
const MaxNoteLen = 200

// Tracker is one logged production record. DateTime and Created are unix
// milliseconds UTC.
type Tracker struct {
	ID            int64   `json:"tracker_id" db:"id"`
	UserID        int64   `json:"user_id" db:"user_id"`
	UserName      string  `json:"user_name,omitempty" db:"user_name"`
	ProjectID     int64   `json:"project_id" db:"project_id"`
	ProjectName   string  `json:"project_name,omitempty" db:"project_name"`
	TaskID        int64   `json:"task_id" db:"task_id"`
	TaskName      string  `json:"task_name,omitempty" db:"task_name"`
	Shift         string  `json:"shift" db:"shift"`
	DateTime      int64   `json:"date_time" db:"date_time"`
	TenureTarget  float64 `json:"tenure_target" db:"tenure_target"`
	Production    float64 `json:"production" db:"production"`
	BillableHours float64 `json:"billable_hours" db:"billable_hours"`
	Note          string  `json:"tracker_note,omitempty" db:"note"`
	FileURL       string  `json:"tracker_file,omitempty" db:"file_url"`
	Created       int64   `json:"created" db:"created"`
}

type Project struct {
	ID             int64    `json:"project_id" db:"id"`
	Name           string   `json:"project_name" db:"name" validate:"required"`
	ManagerID      int64    `json:"project_manager_id,omitempty" db:"manager_id"`
	AsstManagerIDs []int64  `json:"asst_project_manager_id,omitempty"`
	QAIDs          []int64  `json:"project_qa_id,omitempty"`
	TeamIDs        []int64  `json:"project_team_id,omitempty"`
	Files          []string `json:"project_files,omitempty"`
	Tasks          []Task   `json:"tasks,omitempty"`
	Updated        int64    `json:"updated" db:"updated"`
}

// Task carries its per-hour target before the tenure multiplier. Older
// clients send the target under per_hour_target or target; TargetValue
// resolves the fallback chain.
type Task struct {
	ID               int64    `json:"task_id" db:"id"`
	ProjectID        int64    `json:"project_id" db:"project_id"`
	Name             string   `json:"task_name" db:"name" validate:"required"`
	Target           float64  `json:"task_target" db:"target"`
	PerHourTarget    *float64 `json:"per_hour_target,omitempty"`
	LegacyTarget     *float64 `json:"target,omitempty"`
	TeamIDs          []int64  `json:"task_team_id,omitempty"`
	ImportantColumns []string `json:"important_columns,omitempty"`
	Updated          int64    `json:"updated" db:"updated"`
}

// TargetValue returns the task's per-hour target, preferring task_target,
// then per_hour_target, then the legacy target key, defaulting to 0.
func (t *Task) TargetValue() float64 {
	if t == nil {
		return 0
	}
	if t.Target != 0 {
		return t.Target
	}
	if t.PerHourTarget != nil && *t.PerHourTarget != 0 {
		return *t.PerHourTarget
	}
	if t.LegacyTarget != nil {
		return *t.LegacyTarget
	}
	return 0
}

type User struct {
	ID           int64   `json:"user_id" db:"id"`
	Name         string  `json:"user_name" db:"name" validate:"required"`
	Email        string  `json:"email" db:"email" validate:"required,email"`
	Tenure       float64 `json:"user_tenure" db:"tenure"`
	RoleID       int64   `json:"role_id" db:"role_id"`
	RoleName     string  `json:"role_name,omitempty"`
	Updated      int64   `json:"updated" db:"updated"`
	PasswordHash string  `json:"-" db:"password_hash"`
}

// Totals is the reduction of a tracker set used for the TOTAL row.
type Totals struct {
	TenureTarget  float64 `json:"tenure_target"`
	Production    float64 `json:"production"`
	BillableHours float64 `json:"billable_hours"`
}

// MonthSummary is one (year, month) bucket of the monthly report.
// Month is 1-12; Label is the English month name.
type MonthSummary struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Label         string  `json:"month_name"`
	TenureTarget  float64 `json:"tenure_target"`
	Production    float64 `json:"production"`
	BillableHours float64 `json:"billable_hours"`
}
