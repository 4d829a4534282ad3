// Package rest is the HTTP edge: confirmation links, password reset, health,
// statistics and the operator endpoints.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/dailyphrase/internal/logger"
	"github.com/dtroode/dailyphrase/internal/model"
	"github.com/dtroode/dailyphrase/internal/service"
)

// Confirmer drives confirmation and password reset tokens.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, userID int64) error
	Confirm(ctx context.Context, secret string) (service.ConfirmationResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConsumePasswordReset(ctx context.Context, secret string) (int64, error)
}

// Runner starts dispatch runs.
type Runner interface {
	RunOnce(ctx context.Context, date time.Time) (model.DispatchRunSummary, error)
	RetryExhausted(ctx context.Context, runID uuid.UUID) (model.DispatchRunSummary, error)
}

// Reporter reads runs, attempts and daily counters.
type Reporter interface {
	Run(ctx context.Context, runID uuid.UUID) (service.RunReport, error)
	Attempts(ctx context.Context, runID uuid.UUID, userID int64) ([]model.DeliveryAttempt, error)
	DailyStats(ctx context.Context, date time.Time) (model.DailyStats, error)
	Today() time.Time
	ParseDate(s string) (time.Time, error)
}

// HealthChecker reports whether dispatching is healthy.
type HealthChecker interface {
	Check(ctx context.Context) (service.HealthStatus, error)
}

// Handler serves the HTTP endpoints.
type Handler struct {
	confirmer Confirmer
	runner    Runner
	reporter  Reporter
	health    HealthChecker
	archive   model.Storage
	logger    *logger.Logger
}

// NewHandler builds a Handler. archive may be nil.
func NewHandler(confirmer Confirmer, runner Runner, reporter Reporter, health HealthChecker, archive model.Storage, logger *logger.Logger) *Handler {
	return &Handler{
		confirmer: confirmer,
		runner:    runner,
		reporter:  reporter,
		health:    health,
		archive:   archive,
		logger:    logger,
	}
}

type confirmResponse struct {
	Status string `json:"status"`
	UserID int64  `json:"user_id,omitempty"`
}

var confirmPage = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="robots" content="noindex"><title>Confirm your subscription</title></head>
<body>
<form method="post" action="/confirm">
<input type="hidden" name="token" value="{{.}}">
<button type="submit">Confirm my email</button>
</form>
</body>
</html>
`))

// ConfirmPage handles GET /confirm?token=. It only renders a form so link
// scanners that prefetch mail links cannot consume the token.
func (h *Handler) ConfirmPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := confirmPage.Execute(w, r.URL.Query().Get("token")); err != nil {
		h.logger.Error("HTTP handler: failed to render confirm page", "error", err.Error())
	}
}

// Confirm handles POST /confirm with the token as a form value.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	res, err := h.confirmer.Confirm(r.Context(), r.FormValue("token"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, confirmationHTTPStatus(res.Status), confirmResponse{Status: res.Status.String(), UserID: res.UserID})
}

type requestConfirmationRequest struct {
	UserID int64 `json:"user_id"`
}

// RequestConfirmation handles POST /admin/confirmations.
func (h *Handler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	var req requestConfirmationRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := h.confirmer.RequestConfirmation(r.Context(), req.UserID); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /password-reset. The response never
// reveals whether the address is registered.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.confirmer.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type consumeResetRequest struct {
	Token string `json:"token"`
}

type consumeResetResponse struct {
	UserID int64 `json:"user_id"`
}

// ConsumePasswordReset handles POST /password-reset/confirm.
func (h *Handler) ConsumePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req consumeResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := h.confirmer.ConsumePasswordReset(r.Context(), req.Token)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consumeResetResponse{UserID: userID})
}

type healthResponse struct {
	Status    string     `json:"status"`
	Reason    string     `json:"reason"`
	LatestRun *uuid.UUID `json:"latest_run,omitempty"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	hs, err := h.health.Check(r.Context())
	if err != nil {
		h.logger.Error("HTTP: health check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Reason: "health check failed"})
		return
	}

	resp := healthResponse{Status: "ok", Reason: hs.Reason}
	if hs.LatestRun != nil {
		resp.LatestRun = &hs.LatestRun.ID
	}
	code := http.StatusOK
	if !hs.Serving {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

type statsResponse struct {
	Date        string  `json:"date"`
	Total       int     `json:"total"`
	Sent        int     `json:"sent"`
	Failed      int     `json:"failed"`
	Retrying    int     `json:"retrying"`
	SuccessRate float64 `json:"success_rate"`
}

// Stats handles GET /admin/stats?date=YYYY-MM-DD, defaulting to today.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	stats, err := h.reporter.DailyStats(r.Context(), date)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Date:        date.Format(time.DateOnly),
		Total:       stats.Total,
		Sent:        stats.Sent,
		Failed:      stats.Failed,
		Retrying:    stats.Retrying,
		SuccessRate: stats.SuccessRate(),
	})
}

type runSummaryResponse struct {
	RunID                 uuid.UUID `json:"run_id"`
	ScheduledFor          string    `json:"scheduled_for"`
	TotalRecipients       int       `json:"total_recipients"`
	TotalSent             int       `json:"total_sent"`
	TotalFailed           int       `json:"total_failed"`
	PermanentlyFailedUIDs []int64   `json:"permanently_failed_user_ids"`
}

type triggerRunRequest struct {
	Date string `json:"date"`
}

// TriggerRun handles POST /admin/runs. The run outlives a dropped client.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req triggerRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date := h.reporter.Today()
	if req.Date != "" {
		d, err := h.reporter.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = d
	}

	ctx := context.WithoutCancel(r.Context())
	summary, err := h.runner.RunOnce(ctx, date)
	if err != nil {
		h.logger.Error("HTTP: triggered run failed", "run_id", summary.RunID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "dispatch run failed")
		return
	}
	writeSummary(w, summary)
}

// RetryRun handles POST /admin/runs/{runID}/retry: a new run over the
// recipients of runID that exhausted their attempts.
func (h *Handler) RetryRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.runner.RetryExhausted(context.WithoutCancel(r.Context()), runID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrRunIncomplete) {
			h.handleError(w, err)
			return
		}
		h.logger.Error("HTTP: retry run failed", "previous_run_id", runID, "run_id", summary.RunID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "dispatch run failed")
		return
	}
	writeSummary(w, summary)
}

func writeSummary(w http.ResponseWriter, summary model.DispatchRunSummary) {
	uids := summary.PermanentlyFailedUIDs
	if uids == nil {
		uids = []int64{}
	}
	writeJSON(w, http.StatusOK, runSummaryResponse{
		RunID:                 summary.RunID,
		ScheduledFor:          summary.ScheduledFor.Format(time.DateOnly),
		TotalRecipients:       summary.TotalRecipients,
		TotalSent:             summary.TotalSent,
		TotalFailed:           summary.TotalFailed,
		PermanentlyFailedUIDs: uids,
	})
}

type runReportResponse struct {
	RunID           uuid.UUID  `json:"run_id"`
	ScheduledFor    string     `json:"scheduled_for"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	AbandonedAt     *time.Time `json:"abandoned_at,omitempty"`
	AbandonReason   string     `json:"abandon_reason,omitempty"`
	TotalRecipients int        `json:"total_recipients"`
	TotalSent       int        `json:"total_sent"`
	TotalFailed     int        `json:"total_failed"`
	Attempts        int        `json:"attempts"`
	Retryable       int        `json:"retryable_attempts"`
}

// GetRun handles GET /admin/runs/{runID}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	report, err := h.reporter.Run(r.Context(), runID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runReportResponse{
		RunID:           report.Run.ID,
		ScheduledFor:    report.Run.ScheduledFor.Format(time.DateOnly),
		StartedAt:       report.Run.StartedAt,
		CompletedAt:     report.Run.CompletedAt,
		AbandonedAt:     report.Run.AbandonedAt,
		AbandonReason:   report.Run.AbandonReason,
		TotalRecipients: report.Run.TotalRecipients,
		TotalSent:       report.Run.TotalSent,
		TotalFailed:     report.Run.TotalFailed,
		Attempts:        report.Counts.Attempts,
		Retryable:       report.Counts.Retryable,
	})
}

type attemptResponse struct {
	AttemptNumber int       `json:"attempt_number"`
	Outcome       string    `json:"outcome"`
	PhraseID      *int64    `json:"phrase_id"`
	ErrorKind     *string   `json:"error_kind"`
	ErrorDetail   *string   `json:"error_detail"`
	Timestamp     time.Time `json:"timestamp"`
}

// GetAttempts handles GET /admin/runs/{runID}/users/{userID}/attempts.
func (h *Handler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	attempts, err := h.reporter.Attempts(r.Context(), runID, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	resp := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, attemptResponse{
			AttemptNumber: a.AttemptNumber,
			Outcome:       string(a.Outcome),
			PhraseID:      a.PhraseID,
			ErrorKind:     a.ErrorKind,
			ErrorDetail:   a.ErrorDetail,
			Timestamp:     a.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetArchivedRun handles GET /admin/runs/{runID}/archive and streams the
// stored summary of a completed run.
func (h *Handler) GetArchivedRun(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "run archive is not configured")
		return
	}
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}
	report, err := h.reporter.Run(r.Context(), runID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	key := service.ArchiveKey(model.DispatchRunSummary{RunID: runID, ScheduledFor: report.Run.ScheduledFor})
	rc, err := h.archive.Download(r.Context(), key)
	if err != nil {
		h.handleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("HTTP: failed to stream archived run", "run_id", runID, "error", err.Error())
	}
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.reporter.Today(), true
	}
	d, err := h.reporter.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, false
	}
	return d, true
}

func runIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return uuid.Nil, false
	}
	return id, true
}

func confirmationHTTPStatus(s service.ConfirmationStatus) int {
	switch s {
	case service.ConfirmationConfirmed:
		return http.StatusOK
	case service.ConfirmationNotFound:
		return http.StatusNotFound
	case service.ConfirmationExpired:
		return http.StatusGone
	case service.ConfirmationAlreadyConsumed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
