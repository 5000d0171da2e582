package rules

import "refinery/internal/domain"

var maritalByCode = map[string]string{
	"S": "Single",
	"M": "Married",
}

var genderByCode = map[string]string{
	"M": "Male",
	"F": "Female",
}

// NormalizeCustomer maps one raw CRM customer row to a typed candidate. The
// numeric id is the mandatory business key; marital status and gender codes
// are expanded to labels; the creation date orders deduplication.
func NormalizeCustomer(raw domain.RawRecord) (domain.Customer, *Rejection) {
	id, rej := parseKeyInt(raw.Field("id"), "id")
	if rej != nil {
		return domain.Customer{}, rej
	}

	created, rej := parseDate(raw.Field("created_date"), "created_date")
	if rej != nil {
		return domain.Customer{}, rej
	}

	return domain.Customer{
		ID:             id,
		CustomerNumber: clean(raw.Field("customer_number")),
		FirstName:      clean(raw.Field("first_name")),
		LastName:       clean(raw.Field("last_name")),
		MaritalStatus:  mapCode(raw.Field("marital_status"), maritalByCode),
		Gender:         mapCode(raw.Field("gender"), genderByCode),
		CreatedDate:    created,
	}, nil
}
