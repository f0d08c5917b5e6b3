package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/internal/files"
	"github.com/trackops/trackd/internal/jobs"
	"github.com/trackops/trackd/internal/report"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

var (
	errForbiddenUser       = errors.New("cannot log entries for another agent")
	errMissingSelection    = errors.New("project_id and task_id are required")
	errUnknownAgent        = errors.New("unknown agent")
	errUnknownTask         = errors.New("unknown task")
	errTaskProjectMismatch = errors.New("task does not belong to the project")
)

// Enqueuer submits background jobs. Satisfied by *jobs.WorkerPool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

type TrackerHandler struct {
	trackerRepo repository.TrackerRepo
	taskRepo    repository.TaskRepo
	userRepo    repository.UserRepo
	rollupRepo  repository.RollupRepo
	store       *files.Store
	queue       Enqueuer
}

func NewTrackerHandler(tr repository.TrackerRepo, kr repository.TaskRepo, ur repository.UserRepo, rr repository.RollupRepo, store *files.Store, queue Enqueuer) *TrackerHandler {
	return &TrackerHandler{trackerRepo: tr, taskRepo: kr, userRepo: ur, rollupRepo: rr, store: store, queue: queue}
}

type trackerViewRequest struct {
	AgentIDs  []flexID `json:"agent_ids,omitempty"`
	ProjectID flexID   `json:"project_id,omitempty"`
	TaskID    flexID   `json:"task_id,omitempty"`
	DateFrom  string   `json:"date_from,omitempty"`
	DateTo    string   `json:"date_to,omitempty"`
}

type trackerViewResponse struct {
	Trackers     []models.Tracker      `json:"trackers"`
	Totals       models.Totals         `json:"totals"`
	MonthSummary []models.MonthSummary `json:"month_summary"`
}

// View returns the caller's filtered tracker snapshot with totals and the
// per-month breakdown. The database narrows by date and user; the filter
// layer applies the remaining dimensions to the fetched snapshot.
func (h *TrackerHandler) View(w http.ResponseWriter, r *http.Request) {
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

	// Without an explicit range the view covers the current UTC day.
	if req.DateFrom == "" && req.DateTo == "" {
		today := time.Now().UTC().Format("2006-01-02")
		req.DateFrom, req.DateTo = today, today
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
		// Agents only ever see their own entries.
		q.UserIDs = []int64{userID}
	}

	entries, err := h.trackerRepo.ListTrackers(r.Context(), q)
	if err != nil {
		http.Error(w, "Failed to list trackers", http.StatusInternalServerError)
		return
	}

	filtered := report.Filter(entries, filters)
	resp := trackerViewResponse{
		Trackers:     filtered,
		Totals:       report.Totals(filtered),
		MonthSummary: report.MonthlySummary(filtered),
	}

	writeJSON(w, dataEnvelope{Data: resp}, http.StatusOK)
}

// Add logs one production record. Multipart so entries can carry an
// attachment; tenure_target and billable_hours are always recomputed
// server-side from the task target and the agent's tenure.
func (h *TrackerHandler) Add(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	entry, status, err := h.entryFromForm(r, callerID, role, nil)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	id, err := h.trackerRepo.CreateTracker(r.Context(), entry)
	if err != nil {
		http.Error(w, "Failed to store tracker", http.StatusInternalServerError)
		return
	}
	entry.ID = id

	h.enqueueRollupRefresh(r.Context(), entry.UserID)
	writeJSON(w, dataEnvelope{Data: entry}, http.StatusCreated)
}

// Update rewrites an existing record. Owners and moderator roles only.
func (h *TrackerHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	trackerID := formInt64(r, "tracker_id")
	if trackerID <= 0 {
		http.Error(w, "tracker_id is required", http.StatusBadRequest)
		return
	}
	existing, err := h.trackerRepo.GetTracker(r.Context(), trackerID)
	if err != nil || existing == nil {
		http.Error(w, "Tracker not found", http.StatusNotFound)
		return
	}
	if existing.UserID != callerID && !auth.CapabilitiesFor(role).CanModerateTrackers {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	entry, status, err := h.entryFromForm(r, callerID, role, existing)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if err := h.trackerRepo.UpdateTracker(r.Context(), entry); err != nil {
		http.Error(w, "Failed to update tracker", http.StatusInternalServerError)
		return
	}

	// A replaced attachment leaves the old file orphaned.
	if existing.FileURL != "" && existing.FileURL != entry.FileURL {
		h.enqueueFileScrub(r.Context(), existing.FileURL)
	}
	// A reassigned entry changes both owners' month sums.
	if existing.UserID != entry.UserID {
		h.enqueueRollupRefresh(r.Context(), existing.UserID)
	}
	h.enqueueRollupRefresh(r.Context(), entry.UserID)

	writeJSON(w, dataEnvelope{Data: entry}, http.StatusOK)
}

type trackerDeleteRequest struct {
	TrackerID flexID `json:"tracker_id"`
}

// Delete removes a record. Owners may delete only on the UTC calendar day
// the entry was created; moderator roles are not time-boxed.
func (h *TrackerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req trackerDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	trackerID := req.TrackerID.Int64()
	if trackerID <= 0 {
		http.Error(w, "tracker_id is required", http.StatusBadRequest)
		return
	}

	entry, err := h.trackerRepo.GetTracker(r.Context(), trackerID)
	if err != nil || entry == nil {
		http.Error(w, "Tracker not found", http.StatusNotFound)
		return
	}

	moderator := auth.CapabilitiesFor(role).CanModerateTrackers
	if !report.DeletableBy(entry, callerID, moderator, time.Now()) {
		http.Error(w, "Entries can only be deleted on the day they were logged", http.StatusForbidden)
		return
	}

	if err := h.trackerRepo.DeleteTracker(r.Context(), trackerID); err != nil {
		http.Error(w, "Failed to delete tracker", http.StatusInternalServerError)
		return
	}

	if entry.FileURL != "" {
		h.enqueueFileScrub(r.Context(), entry.FileURL)
	}
	h.enqueueRollupRefresh(r.Context(), entry.UserID)

	writeJSON(w, map[string]string{"message": "tracker deleted"}, http.StatusOK)
}

type trackerReportRequest struct {
	UserID flexID `json:"user_id,omitempty"`
}

// Report serves the materialized month rollups for one user, refreshed in
// the background after every tracker write.
func (h *TrackerHandler) Report(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req trackerReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	target := req.UserID.Int64()
	if target <= 0 {
		target = callerID
	}
	if target != callerID && !auth.CapabilitiesFor(role).CanViewTrackerReport {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	buckets, err := h.rollupRepo.ListRollups(r.Context(), target)
	if err != nil {
		http.Error(w, "Failed to list rollups", http.StatusInternalServerError)
		return
	}
	if buckets == nil {
		buckets = []models.MonthSummary{}
	}

	writeJSON(w, dataEnvelope{Data: buckets}, http.StatusOK)
}

// entryFromForm builds a validated tracker from the multipart form. When
// existing is non-nil the form updates it in place, keeping fields the form
// does not carry. Returns the http status to use on error.
func (h *TrackerHandler) entryFromForm(r *http.Request, callerID int64, role auth.Role, existing *models.Tracker) (*models.Tracker, int, error) {
	entry := &models.Tracker{}
	if existing != nil {
		cp := *existing
		entry = &cp
	}

	if entry.UserID == 0 {
		entry.UserID = callerID
	}
	if v := formInt64(r, "user_id"); v > 0 {
		// Only moderator roles log or reassign entries for other agents.
		if v != callerID && v != entry.UserID && !auth.CapabilitiesFor(role).CanModerateTrackers {
			return nil, http.StatusForbidden, errForbiddenUser
		}
		entry.UserID = v
	}
	if v := formInt64(r, "project_id"); v > 0 {
		entry.ProjectID = v
	}
	if v := formInt64(r, "task_id"); v > 0 {
		entry.TaskID = v
	}
	if v := r.FormValue("shift"); v != "" {
		entry.Shift = v
	}
	if v := formInt64(r, "date_time"); v > 0 {
		entry.DateTime = v
	}
	if entry.DateTime == 0 {
		entry.DateTime = time.Now().UTC().UnixMilli()
	}
	if _, ok := r.MultipartForm.Value["production"]; ok {
		entry.Production = formFloat(r, "production")
	}
	if v, ok := r.MultipartForm.Value["tracker_note"]; ok && len(v) > 0 {
		entry.Note = strings.TrimSpace(v[0])
	}

	if entry.ProjectID <= 0 || entry.TaskID <= 0 {
		return nil, http.StatusBadRequest, errMissingSelection
	}
	if err := report.ValidateShift(entry.Shift); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if err := report.ValidateNote(entry.Note); err != nil {
		return nil, http.StatusBadRequest, err
	}

	user, err := h.userRepo.GetUserByID(r.Context(), entry.UserID)
	if err != nil || user == nil {
		return nil, http.StatusBadRequest, errUnknownAgent
	}
	task, err := h.taskRepo.GetTask(r.Context(), entry.TaskID)
	if err != nil || task == nil {
		return nil, http.StatusBadRequest, errUnknownTask
	}
	if task.ProjectID != entry.ProjectID {
		return nil, http.StatusBadRequest, errTaskProjectMismatch
	}

	// The client's target is never trusted.
	entry.TenureTarget = 0
	if bt := report.BaseTarget(task, user.Tenure); bt != nil {
		entry.TenureTarget = *bt
	}
	if err := report.ValidateProduction(entry.Production, entry.TenureTarget); err != nil {
		return nil, http.StatusBadRequest, err
	}
	entry.BillableHours = 0
	if entry.TenureTarget > 0 {
		entry.BillableHours = report.Round2(entry.Production / entry.TenureTarget)
	}

	if f, fh, err := r.FormFile("tracker_file"); err == nil && fh != nil {
		f.Close()
		url, saveErr := h.store.Save(fh)
		if saveErr != nil {
			return nil, http.StatusBadRequest, saveErr
		}
		entry.FileURL = url
	}

	return entry, http.StatusOK, nil
}

func (h *TrackerHandler) enqueueRollupRefresh(ctx context.Context, userID int64) {
	if h.queue == nil {
		return
	}
	p := jobs.RollupRefreshPayload{UserID: userID}
	if _, err := h.queue.Enqueue(ctx, jobs.TypeRollupRefresh, p, 100, 3); err != nil {
		logger.Error("enqueue rollup refresh", "err", err, "user_id", userID)
	}
}

func (h *TrackerHandler) enqueueFileScrub(ctx context.Context, url string) {
	if h.queue == nil {
		return
	}
	p := jobs.FileScrubPayload{FileURL: url}
	if _, err := h.queue.Enqueue(ctx, jobs.TypeFileScrub, p, 50, 3); err != nil {
		logger.Error("enqueue file scrub", "err", err, "url", url)
	}
}

func formInt64(r *http.Request, key string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func formFloat(r *http.Request, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	if err != nil {
		return 0
	}
	return v
}

// dayStartMilli converts a YYYY-MM-DD day to the first millisecond of that
// UTC day, 0 when the value is empty or malformed.
func dayStartMilli(s string) int64 {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// dayEndMilli converts a YYYY-MM-DD day to the last millisecond of that
// UTC day, 0 when the value is empty or malformed.
func dayEndMilli(s string) int64 {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return 0
	}
	return t.AddDate(0, 0, 1).UnixMilli() - 1
}
