package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trackops/trackd/pkg/models"
)

const userColumns = `u.id, u.name, u.email, u.tenure, u.role_id, COALESCE(r.name, ''), u.updated, u.password_hash`

const userJoins = `FROM users u LEFT JOIN roles r ON r.id = u.role_id`

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var u models.User
	var pw sql.NullString
	if err := scan(&u.ID, &u.Name, &u.Email, &u.Tenure, &u.RoleID, &u.RoleName, &u.Updated, &pw); err != nil {
		return nil, err
	}
	if pw.Valid {
		u.PasswordHash = pw.String
	}
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	if u.Tenure == 0 {
		u.Tenure = 1
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO users (name, email, password_hash, tenure, role_id, updated) VALUES (?, ?, ?, ?, ?, ?)`, u.Name, u.Email, u.PasswordHash, u.Tenure, u.RoleID, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` `+userJoins+` WHERE u.id = ?`, id)
	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` `+userJoins+` WHERE u.email = ?`, email)
	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE users SET name = ?, email = ?, password_hash = ?, tenure = ?, role_id = ?, updated = ? WHERE id = ?`, u.Name, u.Email, u.PasswordHash, u.Tenure, u.RoleID, now(), u.ID)
	return err
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) ListUsersByRole(ctx context.Context, roleID int64) ([]models.User, error) {
	return r.listUsers(ctx, `SELECT `+userColumns+` `+userJoins+` WHERE u.role_id = ? ORDER BY u.name`, roleID)
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	return r.listUsers(ctx, `SELECT `+userColumns+` `+userJoins+` ORDER BY u.name`)
}

func (r *SQLiteRepo) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}

	return out, rows.Err()
}
