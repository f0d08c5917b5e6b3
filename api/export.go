package api

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/internal/report"
	"github.com/trackops/trackd/pkg/repository"
)

type ExportHandler struct {
	trackerRepo repository.TrackerRepo
}

func NewExportHandler(tr repository.TrackerRepo) *ExportHandler {
	return &ExportHandler{trackerRepo: tr}
}

var exportHeader = []string{
	"Date/Time", "Agent", "Project", "Task",
	"Per Hour Target", "Production", "Billable Hours", "Has File",
}

// Export streams the filtered tracker set as a CSV download with a
// trailing TOTAL row. It accepts the same filter body as the view
// endpoint.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req trackerViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	q := repository.TrackerQuery{
		From: dayStartMilli(req.DateFrom),
		To:   dayEndMilli(req.DateTo),
	}
	filters := report.Filters{
		ProjectID: req.ProjectID.String(),
		TaskID:    req.TaskID.String(),
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	}
	if auth.CapabilitiesFor(role).CanViewTrackerReport {
		for _, id := range req.AgentIDs {
			filters.AgentIDs = append(filters.AgentIDs, id.String())
			if v := id.Int64(); v > 0 {
				q.UserIDs = append(q.UserIDs, v)
			}
		}
	} else {
		q.UserIDs = []int64{userID}
	}

	entries, err := h.trackerRepo.ListTrackers(r.Context(), q)
	if err != nil {
		http.Error(w, "Failed to list trackers", http.StatusInternalServerError)
		return
	}
	filtered := report.Filter(entries, filters)
	totals := report.Totals(filtered)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trackers.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for i := range filtered {
		e := &filtered[i]
		hasFile := "no"
		if e.FileURL != "" {
			hasFile = "yes"
		}
		_ = cw.Write([]string{
			time.UnixMilli(e.DateTime).UTC().Format("2006-01-02 15:04"),
			e.UserName,
			e.ProjectName,
			e.TaskName,
			formatFloat(e.TenureTarget),
			formatFloat(e.Production),
			formatFloat(e.BillableHours),
			hasFile,
		})
	}
	_ = cw.Write([]string{
		"TOTAL", "", "", "",
		formatFloat(totals.TenureTarget),
		formatFloat(totals.Production),
		formatFloat(totals.BillableHours),
		"",
	})
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Error("write csv", "err", err)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
