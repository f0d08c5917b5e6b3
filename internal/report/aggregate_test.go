package report_test

import (
	"math"
	"testing"
	"time"

	"github.com/trackops/trackd/internal/report"
	"github.com/trackops/trackd/pkg/models"
)

func millis(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestTotalsEmpty(t *testing.T) {
	got := report.Totals(nil)
	if got.TenureTarget != 0 || got.Production != 0 || got.BillableHours != 0 {
		t.Fatalf("expected all-zero totals for empty input, got %+v", got)
	}
}

func TestTotalsSums(t *testing.T) {
	entries := []models.Tracker{
		{TenureTarget: 10, Production: 5, BillableHours: 4},
		{TenureTarget: 20, Production: 0, BillableHours: 6},
	}
	got := report.Totals(entries)
	if got.TenureTarget != 30 || got.Production != 5 || got.BillableHours != 10 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestTotalsOrderIndependent(t *testing.T) {
	entries := []models.Tracker{
		{TenureTarget: 1.5, Production: 2, BillableHours: 3},
		{TenureTarget: 4, Production: 5.25, BillableHours: 6},
		{TenureTarget: 7, Production: 8, BillableHours: 0.5},
	}
	reversed := []models.Tracker{entries[2], entries[1], entries[0]}
	if report.Totals(entries) != report.Totals(reversed) {
		t.Fatalf("totals changed under reordering")
	}
}

func TestTotalsIgnoresNonFinite(t *testing.T) {
	entries := []models.Tracker{
		{TenureTarget: 10, Production: math.NaN(), BillableHours: math.Inf(1)},
		{TenureTarget: 5, Production: 3, BillableHours: 2},
	}
	got := report.Totals(entries)
	if got.TenureTarget != 15 || got.Production != 3 || got.BillableHours != 2 {
		t.Fatalf("non-finite values leaked into totals: %+v", got)
	}
}

func TestMonthlySummaryBuckets(t *testing.T) {
	entries := []models.Tracker{
		{DateTime: millis(2025, time.March, 3), TenureTarget: 10, Production: 8, BillableHours: 7},
		{DateTime: millis(2025, time.January, 10), TenureTarget: 5, Production: 4, BillableHours: 3},
		// same month, different day: lands in the March bucket
		{DateTime: millis(2025, time.March, 28), TenureTarget: 10, Production: 9, BillableHours: 8},
		{DateTime: millis(2024, time.December, 31), TenureTarget: 1, Production: 1, BillableHours: 1},
	}

	got := report.MonthlySummary(entries)
	if len(got) != 3 {
		t.Fatalf("expected 3 buckets got %d: %+v", len(got), got)
	}

	// chronological, oldest first
	if got[0].Year != 2024 || got[0].Month != 12 || got[0].Label != "December" {
		t.Fatalf("unexpected first bucket: %+v", got[0])
	}
	if got[1].Year != 2025 || got[1].Month != 1 || got[1].Label != "January" {
		t.Fatalf("unexpected second bucket: %+v", got[1])
	}
	if got[2].Year != 2025 || got[2].Month != 3 {
		t.Fatalf("unexpected third bucket: %+v", got[2])
	}
	if got[2].TenureTarget != 20 || got[2].Production != 17 || got[2].BillableHours != 15 {
		t.Fatalf("march bucket not summed: %+v", got[2])
	}
}

func TestMonthlySummarySkipsMissingTimestamps(t *testing.T) {
	entries := []models.Tracker{
		{DateTime: 0, Production: 100},
		{DateTime: -5, Production: 100},
		{DateTime: millis(2025, time.June, 1), Production: 2},
	}
	got := report.MonthlySummary(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 bucket got %d", len(got))
	}
	if got[0].Production != 2 {
		t.Fatalf("skipped entries leaked into bucket: %+v", got[0])
	}
}

func TestMonthlySummaryEmpty(t *testing.T) {
	if got := report.MonthlySummary(nil); len(got) != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

// A target computed by BaseTarget survives aggregation of a single-entry
// list without double-rounding drift.
func TestTargetRoundTripThroughTotals(t *testing.T) {
	task := &models.Task{Target: 33.33}
	bt := report.BaseTarget(task, 1.7)
	if bt == nil {
		t.Fatalf("expected a target")
	}
	entry := models.Tracker{TenureTarget: *bt, DateTime: millis(2025, time.May, 5)}
	got := report.Totals([]models.Tracker{entry})
	if got.TenureTarget != *bt {
		t.Fatalf("round-trip drift: %v != %v", got.TenureTarget, *bt)
	}
}
