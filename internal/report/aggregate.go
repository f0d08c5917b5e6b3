package report

import (
	"math"
	"sort"
	"time"

	"github.com/trackops/trackd/pkg/models"
)

// Totals sums tenure_target, production and billable_hours across all given
// entries. Non-finite values count as zero and an empty input yields all
// zeros; the sum is plain and order-independent.
func Totals(entries []models.Tracker) models.Totals {
	var t models.Totals
	for i := range entries {
		t.TenureTarget += finite(entries[i].TenureTarget)
		t.Production += finite(entries[i].Production)
		t.BillableHours += finite(entries[i].BillableHours)
	}
	return t
}

// MonthlySummary buckets entries by the UTC (year, month) of date_time and
// sums each bucket the same way Totals does. Entries without a usable
// timestamp are skipped. The result is sorted ascending by (year, month),
// oldest first, ready for direct rendering.
//
// The dashboard this replaces bucketed by local calendar date while
// displaying in UTC; here both use UTC.
func MonthlySummary(entries []models.Tracker) []models.MonthSummary {
	buckets := make(map[int]*models.MonthSummary)
	for i := range entries {
		e := &entries[i]
		if e.DateTime <= 0 {
			continue
		}
		ts := time.UnixMilli(e.DateTime).UTC()
		year, month := ts.Year(), int(ts.Month())
		key := year*100 + month
		b, ok := buckets[key]
		if !ok {
			b = &models.MonthSummary{
				Year:  year,
				Month: month,
				Label: ts.Month().String(),
			}
			buckets[key] = b
		}
		b.TenureTarget += finite(e.TenureTarget)
		b.Production += finite(e.Production)
		b.BillableHours += finite(e.BillableHours)
	}

	out := make([]models.MonthSummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
