package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trackops/trackd/pkg/models"
)

func (r *SQLiteRepo) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("task is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO tasks (project_id, name, target, updated) VALUES (?, ?, ?, ?)`, t.ProjectID, t.Name, t.TargetValue(), now())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := r.replaceTaskMembers(ctx, id, t.TeamIDs); err != nil {
		return 0, err
	}
	if err := r.replaceTaskColumns(ctx, id, t.ImportantColumns); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *SQLiteRepo) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, project_id, name, target, updated FROM tasks WHERE id = ?`, id)
	var t models.Task
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Target, &t.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadTaskMembers(ctx, &t); err != nil {
		return nil, err
	}
	if err := r.loadTaskColumns(ctx, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *SQLiteRepo) UpdateTask(ctx context.Context, t *models.Task) error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}

	if _, err := r.conn.Exec(ctx, `UPDATE tasks SET project_id = ?, name = ?, target = ?, updated = ? WHERE id = ?`, t.ProjectID, t.Name, t.TargetValue(), now(), t.ID); err != nil {
		return err
	}
	if err := r.replaceTaskMembers(ctx, t.ID, t.TeamIDs); err != nil {
		return err
	}
	return r.replaceTaskColumns(ctx, t.ID, t.ImportantColumns)
}

func (r *SQLiteRepo) DeleteTask(ctx context.Context, id int64) error {
	for _, q := range []string{
		`DELETE FROM task_members WHERE task_id = ?`,
		`DELETE FROM task_columns WHERE task_id = ?`,
		`DELETE FROM tasks WHERE id = ?`,
	} {
		if _, err := r.conn.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, project_id, name, target, updated FROM tasks WHERE project_id = ? ORDER BY name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Target, &t.Updated); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadTaskMembers(ctx, &out[i]); err != nil {
			return nil, err
		}
		if err := r.loadTaskColumns(ctx, &out[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *SQLiteRepo) replaceTaskMembers(ctx context.Context, id int64, userIDs []int64) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM task_members WHERE task_id = ?`, id); err != nil {
		return err
	}
	for _, uid := range userIDs {
		if _, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO task_members (task_id, user_id) VALUES (?, ?)`, id, uid); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) loadTaskMembers(ctx context.Context, t *models.Task) error {
	rows, err := r.conn.QueryRows(ctx, `SELECT user_id FROM task_members WHERE task_id = ? ORDER BY user_id`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.TeamIDs = nil
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return err
		}
		t.TeamIDs = append(t.TeamIDs, uid)
	}
	return rows.Err()
}

func (r *SQLiteRepo) replaceTaskColumns(ctx context.Context, id int64, cols []string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM task_columns WHERE task_id = ?`, id); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO task_columns (task_id, name) VALUES (?, ?)`, id, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) loadTaskColumns(ctx context.Context, t *models.Task) error {
	rows, err := r.conn.QueryRows(ctx, `SELECT name FROM task_columns WHERE task_id = ? ORDER BY name`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.ImportantColumns = nil
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		t.ImportantColumns = append(t.ImportantColumns, c)
	}
	return rows.Err()
}
