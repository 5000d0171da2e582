// Package rules implements the per-entity normalization rules of the quality
// engine. Every rule is a pure function from one raw staging record to either
// a typed candidate or a rejection; rules never panic on malformed input and
// never touch storage. Text fields are trimmed before any other handling, and
// a field that is blank after trimming is treated as NULL.
package rules

import (
	"strconv"
	"strings"
	"time"

	"refinery/internal/domain"
)

// Rejection names the offending field and the reason a raw record was turned
// away. The quality gate attaches the original payload when it quarantines
// the row.
type Rejection struct {
	Field  string
	Reason string
}

func reject(field, reason string) *Rejection {
	return &Rejection{Field: field, Reason: reason}
}

const dateLayout = "2006-01-02"

// compactDateLayout covers dates encoded as 8-digit numeric strings.
const compactDateLayout = "20060102"

func clean(s string) string {
	return strings.TrimSpace(s)
}

// mapCode normalizes a coded text value against a lookup table. Codes are
// matched case-insensitively after trimming; unknown or blank codes map to
// "n/a".
func mapCode(raw string, table map[string]string) string {
	if label, ok := table[strings.ToUpper(clean(raw))]; ok {
		return label
	}
	return "n/a"
}

// parseDate parses an ISO calendar date. Blank means NULL; anything else that
// fails to parse is unparsable.
func parseDate(raw, field string) (*time.Time, *Rejection) {
	s := clean(raw)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, reject(field, domain.ReasonUnparsable)
	}
	return &t, nil
}

// parseCompactDate parses a date encoded as an 8-digit numeric string. Values
// of the wrong length or not positive are NULL rather than errors; 8-digit
// values that are not a real calendar date are unparsable.
func parseCompactDate(raw, field string) (*time.Time, *Rejection) {
	s := clean(raw)
	if s == "" || len(s) != 8 {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, reject(field, domain.ReasonUnparsable)
	}
	if n <= 0 {
		return nil, nil
	}
	t, err := time.Parse(compactDateLayout, s)
	if err != nil {
		return nil, reject(field, domain.ReasonUnparsable)
	}
	return &t, nil
}

// parseAmount parses a decimal amount. Blank means NULL.
func parseAmount(raw, field string) (*float64, *Rejection) {
	s := clean(raw)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, reject(field, domain.ReasonUnparsable)
	}
	return &f, nil
}

// parseKeyInt parses a mandatory integer business key. Blank is a missing
// key; a non-integer value is unparsable.
func parseKeyInt(raw, field string) (int64, *Rejection) {
	s := clean(raw)
	if s == "" {
		return 0, reject(field, domain.ReasonMissingKey)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, reject(field, domain.ReasonUnparsable)
	}
	return n, nil
}
