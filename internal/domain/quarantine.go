package domain

import "time"

// Rejection reasons. Reason strings are part of the reporting contract and
// appear verbatim in the quarantine sink and run metrics.
const (
	ReasonMissingKey   = "Missing Mandatory Key"
	ReasonDuplicate    = "Duplicate Record"
	ReasonDuplicateID  = "Duplicate ID — Manual Investigation Required"
	ReasonUnparsable   = "Unparsable Value"
	ReasonDateSequence = "Inconsistent Date Sequence"
)

// QuarantineRecord captures one rejected raw record with its reason and the
// verbatim original payload, so the row can be remediated manually. The sink
// is cleared at the start of each run and is append-only within a run.
type QuarantineRecord struct {
	ID         string
	RunID      string
	Entity     Entity
	Field      string
	Reason     string
	Payload    map[string]string
	CapturedAt time.Time
}

// QuarantineFilter narrows quarantine listings.
type QuarantineFilter struct {
	Entity Entity // empty = all entities
	Reason string // empty = all reasons
	Limit  int    // <=0 = default
}

// QuarantineCount is one row of the per-entity, per-reason summary.
type QuarantineCount struct {
	Entity Entity
	Reason string
	Count  int64
}
