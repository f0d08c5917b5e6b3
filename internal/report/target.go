package report

import (
	"math"

	"github.com/trackops/trackd/pkg/models"
)

// BaseTarget derives the personalized per-hour target for an (agent, task)
// pair: the task's per-hour target times the agent's tenure multiplier,
// rounded to 2 decimal places. It returns nil when the task or the tenure
// is missing, so callers can render a placeholder instead of a misleading
// zero target.
func BaseTarget(task *models.Task, tenure float64) *float64 {
	if task == nil || tenure == 0 || math.IsNaN(tenure) || math.IsInf(tenure, 0) {
		return nil
	}
	v := Round2(task.TargetValue() * tenure)
	return &v
}

// Round2 rounds to 2 decimal places, the precision targets are displayed
// and stored with.
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*100) / 100
}
