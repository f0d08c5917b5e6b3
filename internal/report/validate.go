package report

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/trackops/trackd/pkg/models"
)

// ValidateProduction enforces the entry-time production range: at least
// zero and at most double the base target. The ceiling is inclusive.
func ValidateProduction(production, tenureTarget float64) error {
	if math.IsNaN(production) || math.IsInf(production, 0) {
		return fmt.Errorf("production is not a number")
	}
	if production < 0 {
		return fmt.Errorf("production cannot be negative")
	}
	if ceiling := 2 * finite(tenureTarget); production > ceiling {
		return fmt.Errorf("production %.2f exceeds double the base target (%.2f)", production, ceiling)
	}
	return nil
}

// ValidateNote rejects notes over the character limit.
func ValidateNote(note string) error {
	if n := utf8.RuneCountInString(note); n > models.MaxNoteLen {
		return fmt.Errorf("note is %d characters, limit is %d", n, models.MaxNoteLen)
	}
	return nil
}

// ValidateShift accepts only the day and night shifts.
func ValidateShift(shift string) error {
	if shift != models.ShiftDay && shift != models.ShiftNight {
		return fmt.Errorf("shift must be %q or %q", models.ShiftDay, models.ShiftNight)
	}
	return nil
}

// DeletableBy reports whether a tracker entry may be deleted by the given
// user at the given moment. Owners get a same-day window: the entry is
// deletable only on the UTC calendar day it was created. Moderators are
// not time-boxed.
func DeletableBy(e *models.Tracker, userID int64, moderator bool, now time.Time) bool {
	if e == nil {
		return false
	}
	if moderator {
		return true
	}
	if e.UserID != userID {
		return false
	}
	created := time.UnixMilli(e.Created).UTC()
	y1, m1, d1 := created.Date()
	y2, m2, d2 := now.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
