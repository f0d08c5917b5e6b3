package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trackops/trackd/pkg/models"
)

const (
	memberAsstManager = "asst_manager"
	memberQA          = "qa"
	memberTeam        = "team"
)

func (r *SQLiteRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO projects (name, manager_id, updated) VALUES (?, ?, ?)`, p.Name, nullableID(p.ManagerID), now())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := r.replaceProjectMembers(ctx, id, p); err != nil {
		return 0, err
	}
	if err := r.replaceProjectFiles(ctx, id, p.Files); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, COALESCE(manager_id, 0), updated FROM projects WHERE id = ?`, id)
	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.ManagerID, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadProjectMembers(ctx, &p); err != nil {
		return nil, err
	}
	if err := r.loadProjectFiles(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}

	if _, err := r.conn.Exec(ctx, `UPDATE projects SET name = ?, manager_id = ?, updated = ? WHERE id = ?`, p.Name, nullableID(p.ManagerID), now(), p.ID); err != nil {
		return err
	}
	if err := r.replaceProjectMembers(ctx, p.ID, p); err != nil {
		return err
	}
	return r.replaceProjectFiles(ctx, p.ID, p.Files)
}

func (r *SQLiteRepo) DeleteProject(ctx context.Context, id int64) error {
	for _, q := range []string{
		`DELETE FROM project_members WHERE project_id = ?`,
		`DELETE FROM project_files WHERE project_id = ?`,
		`DELETE FROM projects WHERE id = ?`,
	} {
		if _, err := r.conn.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, COALESCE(manager_id, 0), updated FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ManagerID, &p.Updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadProjectMembers(ctx, &out[i]); err != nil {
			return nil, err
		}
		if err := r.loadProjectFiles(ctx, &out[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// ListProjectsWithTasks returns every project with its nested task list in
// two queries, avoiding a per-project task fetch.
func (r *SQLiteRepo) ListProjectsWithTasks(ctx context.Context) ([]models.Project, error) {
	projects, err := r.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, project_id, name, target, updated FROM tasks ORDER BY project_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byProject := make(map[int64][]models.Task)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Target, &t.Updated); err != nil {
			return nil, err
		}
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		projects[i].Tasks = byProject[projects[i].ID]
	}

	return projects, nil
}

func (r *SQLiteRepo) replaceProjectMembers(ctx context.Context, id int64, p *models.Project) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM project_members WHERE project_id = ?`, id); err != nil {
		return err
	}
	insert := func(userIDs []int64, role string) error {
		for _, uid := range userIDs {
			if _, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO project_members (project_id, user_id, member_role) VALUES (?, ?, ?)`, id, uid, role); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(p.AsstManagerIDs, memberAsstManager); err != nil {
		return err
	}
	if err := insert(p.QAIDs, memberQA); err != nil {
		return err
	}
	return insert(p.TeamIDs, memberTeam)
}

func (r *SQLiteRepo) loadProjectMembers(ctx context.Context, p *models.Project) error {
	rows, err := r.conn.QueryRows(ctx, `SELECT user_id, member_role FROM project_members WHERE project_id = ? ORDER BY user_id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.AsstManagerIDs, p.QAIDs, p.TeamIDs = nil, nil, nil
	for rows.Next() {
		var uid int64
		var role string
		if err := rows.Scan(&uid, &role); err != nil {
			return err
		}
		switch role {
		case memberAsstManager:
			p.AsstManagerIDs = append(p.AsstManagerIDs, uid)
		case memberQA:
			p.QAIDs = append(p.QAIDs, uid)
		case memberTeam:
			p.TeamIDs = append(p.TeamIDs, uid)
		}
	}
	return rows.Err()
}

func (r *SQLiteRepo) replaceProjectFiles(ctx context.Context, id int64, urls []string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM project_files WHERE project_id = ?`, id); err != nil {
		return err
	}
	for _, u := range urls {
		if _, err := r.conn.Exec(ctx, `INSERT INTO project_files (project_id, url) VALUES (?, ?)`, id, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) loadProjectFiles(ctx context.Context, p *models.Project) error {
	rows, err := r.conn.QueryRows(ctx, `SELECT url FROM project_files WHERE project_id = ? ORDER BY id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Files = nil
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return err
		}
		p.Files = append(p.Files, u)
	}
	return rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
