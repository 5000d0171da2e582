package domain

// RawRecord is one row of untyped text read from the staging area. Staging
// makes no typing, uniqueness, or non-null guarantees; blanks, duplicates,
// and malformed values are all expected. SQL NULLs surface as empty strings.
type RawRecord struct {
	Entity Entity
	Fields map[string]string
}

// Field returns the named raw field, or "" when absent.
func (r RawRecord) Field(name string) string {
	return r.Fields[name]
}
