package rules

import (
	"time"

	"refinery/internal/domain"
)

func rawRecord(entity domain.Entity, fields map[string]string) domain.RawRecord {
	return domain.RawRecord{Entity: entity, Fields: fields}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrFloat(v float64) *float64 { return &v }
