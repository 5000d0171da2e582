package cli

import (
	"time"

	"refinery/internal/domain"
)

// runView is the JSON shape the CLI prints for a batch run.
type runView struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	TriggerType  string          `json:"trigger_type"`
	TriggeredBy  string          `json:"triggered_by"`
	SourceRows   int64           `json:"source_rows"`
	AcceptedRows int64           `json:"accepted_rows"`
	RejectedRows int64           `json:"rejected_rows"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Entities     []entityRunView `json:"entities,omitempty"`
}

type entityRunView struct {
	Entity        string           `json:"entity"`
	Position      int              `json:"position"`
	Status        string           `json:"status"`
	SourceRows    int64            `json:"source_rows"`
	AcceptedRows  int64            `json:"accepted_rows"`
	RejectedRows  int64            `json:"rejected_rows"`
	RejectReasons map[string]int64 `json:"reject_reasons,omitempty"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
}

type quarantineRecordView struct {
	ID         string            `json:"id"`
	RunID      string            `json:"run_id"`
	Entity     string            `json:"entity"`
	Field      string            `json:"field,omitempty"`
	Reason     string            `json:"reason"`
	Payload    map[string]string `json:"payload"`
	CapturedAt time.Time         `json:"captured_at"`
}

type quarantineCountView struct {
	Entity string `json:"entity"`
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}

func newRunView(run *domain.BatchRun) runView {
	v := runView{
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
		er := &run.Entities[i]
		v.Entities = append(v.Entities, entityRunView{
			Entity:        string(er.Entity),
			Position:      er.Position,
			Status:        er.Status,
			SourceRows:    er.SourceRows,
			AcceptedRows:  er.AcceptedRows,
			RejectedRows:  er.RejectedRows,
			RejectReasons: er.RejectReasons,
			ErrorMessage:  er.ErrorMessage,
		})
	}
	return v
}

func newQuarantineRecordView(rec *domain.QuarantineRecord) quarantineRecordView {
	return quarantineRecordView{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Entity:     string(rec.Entity),
		Field:      rec.Field,
		Reason:     rec.Reason,
		Payload:    rec.Payload,
		CapturedAt: rec.CapturedAt,
	}
}
