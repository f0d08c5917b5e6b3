package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// Job types processed by the worker pool.
const (
	// TypeRollupRefresh re-materializes one user's month rollups after a
	// tracker write.
	TypeRollupRefresh = "rollup.refresh"
	// TypeFileScrub removes an orphaned attachment after its tracker is
	// deleted.
	TypeFileScrub = "file.scrub"
)

// Job is one persisted queue entry.
type Job struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// RollupRefreshPayload is the payload for TypeRollupRefresh.
type RollupRefreshPayload struct {
	UserID int64 `json:"user_id"`
}

// FileScrubPayload is the payload for TypeFileScrub.
type FileScrubPayload struct {
	FileURL string `json:"file_url"`
}

// Handler is the function that processes a job
type Handler func(ctx context.Context, j *Job) error

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	// simple exponential: base 2^attempt seconds, capped
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}
