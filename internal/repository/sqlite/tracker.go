package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

func (r *SQLiteRepo) CreateTracker(ctx context.Context, t *models.Tracker) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("tracker is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO trackers (user_id, project_id, task_id, shift, date_time, tenure_target, production, billable_hours, note, file_url, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.ProjectID, t.TaskID, t.Shift, t.DateTime, t.TenureTarget, t.Production, t.BillableHours, t.Note, t.FileURL, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

const trackerColumns = `t.id, t.user_id, u.name, t.project_id, p.name, t.task_id, k.name, t.shift, t.date_time, t.tenure_target, t.production, t.billable_hours, t.note, t.file_url, t.created`

const trackerJoins = `FROM trackers t
LEFT JOIN users u ON u.id = t.user_id
LEFT JOIN projects p ON p.id = t.project_id
LEFT JOIN tasks k ON k.id = t.task_id`

func scanTracker(scan func(dest ...any) error) (*models.Tracker, error) {
	var t models.Tracker
	var userName, projectName, taskName, note, fileURL sql.NullString
	if err := scan(&t.ID, &t.UserID, &userName, &t.ProjectID, &projectName, &t.TaskID, &taskName, &t.Shift, &t.DateTime, &t.TenureTarget, &t.Production, &t.BillableHours, &note, &fileURL, &t.Created); err != nil {
		return nil, err
	}
	t.UserName = userName.String
	t.ProjectName = projectName.String
	t.TaskName = taskName.String
	t.Note = note.String
	t.FileURL = fileURL.String
	return &t, nil
}

func (r *SQLiteRepo) GetTracker(ctx context.Context, id int64) (*models.Tracker, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+trackerColumns+` `+trackerJoins+` WHERE t.id = ?`, id)
	t, err := scanTracker(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteRepo) UpdateTracker(ctx context.Context, t *models.Tracker) error {
	if t == nil {
		return fmt.Errorf("tracker is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE trackers SET project_id = ?, task_id = ?, shift = ?, date_time = ?, tenure_target = ?, production = ?, billable_hours = ?, note = ?, file_url = ? WHERE id = ?`,
		t.ProjectID, t.TaskID, t.Shift, t.DateTime, t.TenureTarget, t.Production, t.BillableHours, t.Note, t.FileURL, t.ID)
	return err
}

func (r *SQLiteRepo) DeleteTracker(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM trackers WHERE id = ?`, id)
	return err
}

// ListTrackers fetches entries scoped by the query, newest last so the
// result renders in entry order.
func (r *SQLiteRepo) ListTrackers(ctx context.Context, q repository.TrackerQuery) ([]models.Tracker, error) {
	var where []string
	var args []any
	if len(q.UserIDs) > 0 {
		ph := make([]string, len(q.UserIDs))
		for i, id := range q.UserIDs {
			ph[i] = "?"
			args = append(args, id)
		}
		where = append(where, "t.user_id IN ("+strings.Join(ph, ",")+")")
	}
	if q.ProjectID != 0 {
		where = append(where, "t.project_id = ?")
		args = append(args, q.ProjectID)
	}
	if q.TaskID != 0 {
		where = append(where, "t.task_id = ?")
		args = append(args, q.TaskID)
	}
	if q.From != 0 {
		where = append(where, "t.date_time >= ?")
		args = append(args, q.From)
	}
	if q.To != 0 {
		where = append(where, "t.date_time <= ?")
		args = append(args, q.To)
	}

	query := `SELECT ` + trackerColumns + ` ` + trackerJoins
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date_time ASC, t.id ASC"

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tracker
	for rows.Next() {
		t, err := scanTracker(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}

	return out, rows.Err()
}
