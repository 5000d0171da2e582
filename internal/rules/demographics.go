package rules

import (
	"strings"
	"time"

	"refinery/internal/domain"
)

var demoGenderByCode = map[string]string{
	"M":      "Male",
	"MALE":   "Male",
	"F":      "Female",
	"FEMALE": "Female",
}

// NormalizeCustomerDemo maps one raw ERP demographics row to a typed
// candidate. The id loses its legacy "NAS" prefix and any hyphens so it lines
// up with the CRM customer number. Birth dates outside the plausible window
// of [today minus 120 years, today] become NULL rather than rejections.
func NormalizeCustomerDemo(raw domain.RawRecord, today time.Time) (domain.CustomerDemo, *Rejection) {
	id := clean(raw.Field("id"))
	id = strings.TrimPrefix(id, "NAS")
	id = strings.ReplaceAll(id, "-", "")
	if id == "" {
		return domain.CustomerDemo{}, reject("id", domain.ReasonMissingKey)
	}

	birth, rej := parseDate(raw.Field("birth_date"), "birth_date")
	if rej != nil {
		return domain.CustomerDemo{}, rej
	}
	if birth != nil {
		oldest := today.AddDate(-120, 0, 0)
		if birth.After(today) || birth.Before(oldest) {
			birth = nil
		}
	}

	return domain.CustomerDemo{
		CustomerNumber: id,
		BirthDate:      birth,
		Gender:         mapCode(raw.Field("gender"), demoGenderByCode),
	}, nil
}
