package repository

import (
	"context"

	"github.com/trackops/trackd/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// TrackerQuery scopes a tracker fetch. From/To are unix milliseconds UTC
// (inclusive); zero values leave the dimension unscoped. This is the
// primary date scoping; the in-memory filter layer narrows the fetched
// snapshot further.
type TrackerQuery struct {
	UserIDs   []int64
	ProjectID int64
	TaskID    int64
	From      int64
	To        int64
}

type TrackerRepo interface {
	CreateTracker(ctx context.Context, t *models.Tracker) (int64, error)
	GetTracker(ctx context.Context, id int64) (*models.Tracker, error)
	UpdateTracker(ctx context.Context, t *models.Tracker) error
	DeleteTracker(ctx context.Context, id int64) error
	ListTrackers(ctx context.Context, q TrackerQuery) ([]models.Tracker, error)
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	// ListProjectsWithTasks returns the full project->task hierarchy in
	// one call, for cascading selectors.
	ListProjectsWithTasks(ctx context.Context) ([]models.Project, error)
}

type TaskRepo interface {
	CreateTask(ctx context.Context, t *models.Task) (int64, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsersByRole(ctx context.Context, roleID int64) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type RollupRepo interface {
	// ReplaceRollups swaps a user's materialized month buckets.
	ReplaceRollups(ctx context.Context, userID int64, buckets []models.MonthSummary) error
	ListRollups(ctx context.Context, userID int64) ([]models.MonthSummary, error)
}
