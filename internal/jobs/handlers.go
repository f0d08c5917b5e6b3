package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trackops/trackd/internal/files"
	"github.com/trackops/trackd/internal/report"
	"github.com/trackops/trackd/pkg/repository"
)

// NewHandlers builds the handler table for the worker pool.
func NewHandlers(trackers repository.TrackerRepo, rollups repository.RollupRepo, store *files.Store, logger *slog.Logger) map[string]Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return map[string]Handler{
		TypeRollupRefresh: func(ctx context.Context, j *Job) error {
			var p RollupRefreshPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("rollup payload: %w", err)
			}
			if p.UserID <= 0 {
				return fmt.Errorf("rollup payload: missing user_id")
			}

			entries, err := trackers.ListTrackers(ctx, repository.TrackerQuery{UserIDs: []int64{p.UserID}})
			if err != nil {
				return fmt.Errorf("list trackers for rollup: %w", err)
			}
			buckets := report.MonthlySummary(entries)
			if err := rollups.ReplaceRollups(ctx, p.UserID, buckets); err != nil {
				return fmt.Errorf("replace rollups: %w", err)
			}

			logger.Info("rollups refreshed", "user_id", p.UserID, "buckets", len(buckets))
			return nil
		},

		TypeFileScrub: func(ctx context.Context, j *Job) error {
			var p FileScrubPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("scrub payload: %w", err)
			}
			if p.FileURL == "" {
				return nil
			}
			if store == nil {
				return nil
			}
			if err := store.Remove(p.FileURL); err != nil {
				return fmt.Errorf("remove attachment: %w", err)
			}

			logger.Info("attachment scrubbed", "url", p.FileURL)
			return nil
		},
	}
}
