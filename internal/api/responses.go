package api

import (
	"time"

	"refinery/internal/domain"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type runResponse struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	TriggerType  string              `json:"trigger_type"`
	TriggeredBy  string              `json:"triggered_by"`
	SourceRows   int64               `json:"source_rows"`
	AcceptedRows int64               `json:"accepted_rows"`
	RejectedRows int64               `json:"rejected_rows"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Entities     []entityRunResponse `json:"entities,omitempty"`
}

type entityRunResponse struct {
	Entity        string           `json:"entity"`
	Position      int              `json:"position"`
	Status        string           `json:"status"`
	SourceRows    int64            `json:"source_rows"`
	AcceptedRows  int64            `json:"accepted_rows"`
	RejectedRows  int64            `json:"rejected_rows"`
	RejectReasons map[string]int64 `json:"reject_reasons,omitempty"`
	StartedAt     *time.Time       `json:"started_at,omitempty"`
	FinishedAt    *time.Time       `json:"finished_at,omitempty"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
}

type listRunsResponse struct {
	Runs []runResponse `json:"runs"`
}

type quarantineRecordResponse struct {
	ID         string            `json:"id"`
	RunID      string            `json:"run_id"`
	Entity     string            `json:"entity"`
	Field      string            `json:"field,omitempty"`
	Reason     string            `json:"reason"`
	Payload    map[string]string `json:"payload"`
	CapturedAt time.Time         `json:"captured_at"`
}

type listQuarantineResponse struct {
	Records []quarantineRecordResponse `json:"records"`
}

type quarantineCountResponse struct {
	Entity string `json:"entity"`
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}

type quarantineSummaryResponse struct {
	Counts []quarantineCountResponse `json:"counts"`
	Total  int64                     `json:"total"`
}

func newRunResponse(run *domain.BatchRun) runResponse {
	resp := runResponse{
		ID:           run.ID,
		Status:       run.Status,
		TriggerType:  run.TriggerType,
		TriggeredBy:  run.TriggeredBy,
		SourceRows:   run.SourceRows,
		AcceptedRows: run.AcceptedRows,
		RejectedRows: run.RejectedRows,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
	}
	for i := range run.Entities {
		resp.Entities = append(resp.Entities, newEntityRunResponse(&run.Entities[i]))
	}
	return resp
}

func newEntityRunResponse(er *domain.EntityRun) entityRunResponse {
	return entityRunResponse{
		Entity:        string(er.Entity),
		Position:      er.Position,
		Status:        er.Status,
		SourceRows:    er.SourceRows,
		AcceptedRows:  er.AcceptedRows,
		RejectedRows:  er.RejectedRows,
		RejectReasons: er.RejectReasons,
		StartedAt:     er.StartedAt,
		FinishedAt:    er.FinishedAt,
		ErrorMessage:  er.ErrorMessage,
	}
}

func newQuarantineRecordResponse(rec *domain.QuarantineRecord) quarantineRecordResponse {
	return quarantineRecordResponse{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Entity:     string(rec.Entity),
		Field:      rec.Field,
		Reason:     rec.Reason,
		Payload:    rec.Payload,
		CapturedAt: rec.CapturedAt,
	}
}
