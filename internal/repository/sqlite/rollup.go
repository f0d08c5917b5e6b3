package sqlite

import (
	"context"
	"time"

	"github.com/trackops/trackd/pkg/models"
)

// ReplaceRollups swaps a user's materialized month buckets in one
// transaction so readers never see a partial refresh.
func (r *SQLiteRepo) ReplaceRollups(ctx context.Context, userID int64, buckets []models.MonthSummary) error {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM month_rollups WHERE user_id = ?`, userID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO month_rollups (user_id, year, month, tenure_target, production, billable_hours, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, b.Year, b.Month, b.TenureTarget, b.Production, b.BillableHours, now()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) ListRollups(ctx context.Context, userID int64) ([]models.MonthSummary, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT year, month, tenure_target, production, billable_hours FROM month_rollups WHERE user_id = ? ORDER BY year, month`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthSummary
	for rows.Next() {
		var b models.MonthSummary
		if err := rows.Scan(&b.Year, &b.Month, &b.TenureTarget, &b.Production, &b.BillableHours); err != nil {
			return nil, err
		}
		if b.Month >= 1 && b.Month <= 12 {
			b.Label = time.Month(b.Month).String()
		}
		out = append(out, b)
	}

	return out, rows.Err()
}
