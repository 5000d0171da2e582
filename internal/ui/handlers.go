package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"refinery/internal/domain"
)

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Runs.ListRuns(r.Context(), domain.RunFilter{Limit: 20})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	counts, err := h.Quarantine.Summary(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	d := overviewPageData{}
	if len(runs) > 0 {
		d.LatestStatus = runs[0].Status
		d.LatestFinished = formatTimePtr(runs[0].FinishedAt)
	}

	d.Runs = make([]runRowData, 0, len(runs))
	for i := range runs {
		run := runs[i]
		d.Runs = append(d.Runs, runRowData{
			ID:       run.ID,
			URL:      "/runs/" + run.ID,
			Status:   run.Status,
			Trigger:  run.TriggerType,
			By:       run.TriggeredBy,
			Started:  formatTimePtr(run.StartedAt),
			Finished: formatTimePtr(run.FinishedAt),
			Source:   formatCount(run.SourceRows),
			Accepted: formatCount(run.AcceptedRows),
			Rejected: formatCount(run.RejectedRows),
		})
	}

	var total int64
	d.Summary = make([]summaryRowData, 0, len(counts))
	for _, c := range counts {
		total += c.Count
		d.Summary = append(d.Summary, summaryRowData{
			Entity: string(c.Entity),
			Reason: c.Reason,
			Count:  formatCount(c.Count),
		})
	}
	d.TotalRejects = formatCount(total)

	renderHTML(w, http.StatusOK, overviewPage(d))
}

func (h *Handler) RunDetail(w http.ResponseWriter, r *http.Request) {
	run, err := h.Runs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	d := runDetailPageData{
		ID:       run.ID,
		Status:   run.Status,
		Trigger:  run.TriggerType,
		By:       run.TriggeredBy,
		Started:  formatTimePtr(run.StartedAt),
		Finished: formatTimePtr(run.FinishedAt),
		Source:   formatCount(run.SourceRows),
		Accepted: formatCount(run.AcceptedRows),
		Rejected: formatCount(run.RejectedRows),
	}
	if run.ErrorMessage != nil {
		d.Error = *run.ErrorMessage
	}

	d.Entities = make([]entityRowData, 0, len(run.Entities))
	for i := range run.Entities {
		er := run.Entities[i]
		row := entityRowData{
			Entity:   string(er.Entity),
			Status:   er.Status,
			Source:   formatCount(er.SourceRows),
			Accepted: formatCount(er.AcceptedRows),
			Rejected: formatCount(er.RejectedRows),
			Reasons:  formatReasons(er.RejectReasons),
			Started:  formatTimePtr(er.StartedAt),
			Finished: formatTimePtr(er.FinishedAt),
		}
		if er.ErrorMessage != nil {
			row.Error = *er.ErrorMessage
		}
		d.Entities = append(d.Entities, row)
	}

	renderHTML(w, http.StatusOK, runDetailPage(d))
}

func (h *Handler) QuarantineList(w http.ResponseWriter, r *http.Request) {
	filter := domain.QuarantineFilter{Limit: 200}
	active := ""
	if raw := r.URL.Query().Get("entity"); raw != "" {
		entity, err := domain.ParseEntity(raw)
		if err != nil {
			h.renderServiceError(w, r, err)
			return
		}
		filter.Entity = entity
		active = raw
	}

	records, err := h.Quarantine.List(r.Context(), filter)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	d := quarantinePageData{ActiveEntity: active}
	for _, entity := range domain.EntityOrder {
		d.Entities = append(d.Entities, string(entity))
	}
	d.Rows = make([]quarantineRowData, 0, len(records))
	for i := range records {
		rec := records[i]
		payload := formatPayload(rec.Payload)
		d.Rows = append(d.Rows, quarantineRowData{
			Filter:   rec.Reason + " " + rec.Field + " " + payload,
			Entity:   string(rec.Entity),
			Reason:   rec.Reason,
			Field:    rec.Field,
			Payload:  payload,
			Captured: rec.CapturedAt.Format("2006-01-02 15:04:05"),
		})
	}

	renderHTML(w, http.StatusOK, quarantinePage(d))
}
