package rules

import "refinery/internal/domain"

// NormalizeCategory trims every field and enforces the mandatory id. The
// category feed carries no codes to decode, so this is the smallest rule set.
func NormalizeCategory(raw domain.RawRecord) (domain.Category, *Rejection) {
	id := clean(raw.Field("id"))
	if id == "" {
		return domain.Category{}, reject("id", domain.ReasonMissingKey)
	}

	return domain.Category{
		ID:          id,
		Category:    clean(raw.Field("category")),
		Subcategory: clean(raw.Field("subcategory")),
		Maintenance: clean(raw.Field("maintenance")),
	}, nil
}
