// Package api implements the HTTP API: run control, run history, and
// quarantine inspection.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"refinery/internal/domain"
)

// BatchTrigger starts batch runs on behalf of API callers. Implemented by the
// batch service.
type BatchTrigger interface {
	Trigger(ctx context.Context, triggerType, triggeredBy string) (*domain.BatchRun, error)
}

// Handler serves the versioned API endpoints.
type Handler struct {
	batch      BatchTrigger
	runs       domain.BatchRunRepository
	quarantine domain.QuarantineReader
	logger     *slog.Logger
}

func NewHandler(batch BatchTrigger, runs domain.BatchRunRepository, quarantine domain.QuarantineReader, logger *slog.Logger) *Handler {
	return &Handler{batch: batch, runs: runs, quarantine: quarantine, logger: logger}
}

// Health reports liveness. Public, unauthenticated.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type triggerRunRequest struct {
	TriggeredBy string `json:"triggered_by"`
}

// TriggerRun starts a batch run and returns 202 with the pending run. A run
// already in progress maps to 409.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req triggerRunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	triggeredBy := strings.TrimSpace(req.TriggeredBy)
	if triggeredBy == "" {
		triggeredBy = "api"
	}

	run, err := h.batch.Trigger(r.Context(), domain.TriggerTypeAPI, triggeredBy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newRunResponse(run))
}

// ListRuns returns run history, newest first. Supports ?status= and ?limit=.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	status, err := parseRunStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	runs, err := h.runs.ListRuns(r.Context(), domain.RunFilter{Status: status, Limit: limit})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := listRunsResponse{Runs: make([]runResponse, 0, len(runs))}
	for i := range runs {
		resp.Runs = append(resp.Runs, newRunResponse(&runs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRun returns one run with its per-entity breakdown.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

// ListQuarantine returns quarantined records. Supports ?entity=, ?reason= and
// ?limit=.
func (h *Handler) ListQuarantine(w http.ResponseWriter, r *http.Request) {
	filter := domain.QuarantineFilter{Reason: r.URL.Query().Get("reason")}

	if raw := r.URL.Query().Get("entity"); raw != "" {
		entity, err := domain.ParseEntity(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Entity = entity
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter.Limit = limit

	records, err := h.quarantine.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := listQuarantineResponse{Records: make([]quarantineRecordResponse, 0, len(records))}
	for i := range records {
		resp.Records = append(resp.Records, newQuarantineRecordResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// QuarantineSummary returns reject counts grouped by entity and reason.
func (h *Handler) QuarantineSummary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.quarantine.Summary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := quarantineSummaryResponse{Counts: make([]quarantineCountResponse, 0, len(counts))}
	for _, c := range counts {
		resp.Counts = append(resp.Counts, quarantineCountResponse{
			Entity: string(c.Entity),
			Reason: c.Reason,
			Count:  c.Count,
		})
		resp.Total += c.Count
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeJSON decodes a request body, tolerating an empty body. The body is
// capped at 1 MiB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func parseRunStatus(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	status := strings.ToUpper(raw)
	switch status {
	case domain.RunStatusPending, domain.RunStatusRunning, domain.RunStatusCompleted, domain.RunStatusFailed:
		return status, nil
	}
	return "", domain.ErrValidation("unknown status %q", raw)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, domain.ErrValidation("invalid limit %q", raw)
	}
	return limit, nil
}
