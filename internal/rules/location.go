package rules

import (
	"strings"

	"refinery/internal/domain"
)

// NormalizeLocation maps one raw ERP location row to a typed candidate. The
// id loses all hyphens so it lines up with the CRM customer number, and the
// country code is expanded to a display name; unrecognized countries pass
// through trimmed.
func NormalizeLocation(raw domain.RawRecord) (domain.Location, *Rejection) {
	id := strings.ReplaceAll(clean(raw.Field("id")), "-", "")
	if id == "" {
		return domain.Location{}, reject("id", domain.ReasonMissingKey)
	}

	country := clean(raw.Field("country"))
	switch strings.ToUpper(country) {
	case "US", "USA":
		country = "United States"
	case "DE":
		country = "Germany"
	case "":
		country = "n/a"
	}

	return domain.Location{
		CustomerNumber: id,
		Country:        country,
	}, nil
}
