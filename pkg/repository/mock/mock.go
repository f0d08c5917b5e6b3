package mock

import (
	"context"
	"sort"

	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Trackers *TrackerRepo
	Projects *ProjectRepo
	Tasks    *TaskRepo
	Users    *UserRepo
	Rollups  *RollupRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Trackers: &TrackerRepo{byID: map[int64]*models.Tracker{}},
		Projects: &ProjectRepo{byID: map[int64]*models.Project{}},
		Tasks:    &TaskRepo{byID: map[int64]*models.Task{}},
		Users:    &UserRepo{byID: map[int64]*models.User{}},
		Rollups:  &RollupRepo{byUser: map[int64][]models.MonthSummary{}},
	}
}

type TrackerRepo struct {
	byID      map[int64]*models.Tracker
	nextID    int64
	CreateErr error
}

var _ repository.TrackerRepo = (*TrackerRepo)(nil)

func (m *TrackerRepo) CreateTracker(ctx context.Context, t *models.Tracker) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *TrackerRepo) GetTracker(ctx context.Context, id int64) (*models.Tracker, error) {
	if t, ok := m.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *TrackerRepo) UpdateTracker(ctx context.Context, t *models.Tracker) error {
	if _, ok := m.byID[t.ID]; ok {
		cp := *t
		m.byID[t.ID] = &cp
	}
	return nil
}

func (m *TrackerRepo) DeleteTracker(ctx context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

func (m *TrackerRepo) ListTrackers(ctx context.Context, q repository.TrackerQuery) ([]models.Tracker, error) {
	users := map[int64]bool{}
	for _, id := range q.UserIDs {
		users[id] = true
	}
	var out []models.Tracker
	for _, t := range m.byID {
		if len(users) > 0 && !users[t.UserID] {
			continue
		}
		if q.ProjectID != 0 && t.ProjectID != q.ProjectID {
			continue
		}
		if q.TaskID != 0 && t.TaskID != q.TaskID {
			continue
		}
		if q.From != 0 && t.DateTime < q.From {
			continue
		}
		if q.To != 0 && t.DateTime > q.To {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type ProjectRepo struct {
	byID   map[int64]*models.Project
	nextID int64
}

var _ repository.ProjectRepo = (*ProjectRepo)(nil)

func (m *ProjectRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *ProjectRepo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *ProjectRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if _, ok := m.byID[p.ID]; ok {
		cp := *p
		m.byID[p.ID] = &cp
	}
	return nil
}

func (m *ProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

func (m *ProjectRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	for _, p := range m.byID {
		cp := *p
		cp.Tasks = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *ProjectRepo) ListProjectsWithTasks(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type TaskRepo struct {
	byID   map[int64]*models.Task
	nextID int64
}

var _ repository.TaskRepo = (*TaskRepo)(nil)

func (m *TaskRepo) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *TaskRepo) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	if t, ok := m.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *TaskRepo) UpdateTask(ctx context.Context, t *models.Task) error {
	if _, ok := m.byID[t.ID]; ok {
		cp := *t
		m.byID[t.ID] = &cp
	}
	return nil
}

func (m *TaskRepo) DeleteTask(ctx context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

func (m *TaskRepo) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.byID {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type UserRepo struct {
	byID      map[int64]*models.User
	nextID    int64
	CreateErr error
}

var _ repository.UserRepo = (*UserRepo)(nil)

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if _, ok := m.byID[u.ID]; ok {
		cp := *u
		m.byID[u.ID] = &cp
	}
	return nil
}

func (m *UserRepo) DeleteUser(ctx context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

func (m *UserRepo) ListUsersByRole(ctx context.Context, roleID int64) ([]models.User, error) {
	var out []models.User
	for _, u := range m.byID {
		if u.RoleID == roleID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type RollupRepo struct {
	byUser map[int64][]models.MonthSummary
}

var _ repository.RollupRepo = (*RollupRepo)(nil)

func (m *RollupRepo) ReplaceRollups(ctx context.Context, userID int64, buckets []models.MonthSummary) error {
	m.byUser[userID] = append([]models.MonthSummary(nil), buckets...)
	return nil
}

func (m *RollupRepo) ListRollups(ctx context.Context, userID int64) ([]models.MonthSummary, error) {
	return append([]models.MonthSummary(nil), m.byUser[userID]...), nil
}

// SeedUser is a convenience for tests that need a user with a fixed id.
func (m *UserRepo) SeedUser(u models.User) {
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	m.byID[u.ID] = &u
}

// SeedTracker installs a tracker with a fixed id.
func (m *TrackerRepo) SeedTracker(t models.Tracker) {
	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
	} else if t.ID > m.nextID {
		m.nextID = t.ID
	}
	m.byID[t.ID] = &t
}

// Len reports how many trackers are stored.
func (m *TrackerRepo) Len() int { return len(m.byID) }
