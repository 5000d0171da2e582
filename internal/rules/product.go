package rules

import (
	"sort"
	"strings"

	"refinery/internal/domain"
)

var productLineByCode = map[string]string{
	"M": "Mountain",
	"R": "Road",
	"S": "Other sales",
	"T": "Touring",
}

// NormalizeProduct maps one raw CRM product row to a typed candidate. The raw
// product key is split into a category key (first five characters, hyphens
// replaced by underscores, so it matches ERP category ids) and the product
// number (everything from the seventh character). Cost defaults to zero when
// missing and is clamped to zero when negative. The source end date is
// ignored entirely; RebuildProductTimeline recomputes it after deduplication.
func NormalizeProduct(raw domain.RawRecord) (domain.Product, *Rejection) {
	id, rej := parseKeyInt(raw.Field("id"), "id")
	if rej != nil {
		return domain.Product{}, rej
	}

	key := clean(raw.Field("key"))
	if key == "" {
		return domain.Product{}, reject("key", domain.ReasonMissingKey)
	}
	catKey := key
	if len(catKey) > 5 {
		catKey = catKey[:5]
	}
	catKey = strings.ReplaceAll(catKey, "-", "_")
	productNumber := ""
	if len(key) > 6 {
		productNumber = key[6:]
	}

	cost, rej := parseAmount(raw.Field("cost"), "cost")
	if rej != nil {
		return domain.Product{}, rej
	}
	costValue := 0.0
	if cost != nil && *cost > 0 {
		costValue = *cost
	}

	start, rej := parseDate(raw.Field("start_date"), "start_date")
	if rej != nil {
		return domain.Product{}, rej
	}

	return domain.Product{
		ID:            id,
		ProductNumber: productNumber,
		CategoryID:    catKey,
		Name:          clean(raw.Field("name")),
		Cost:          costValue,
		Line:          mapCode(raw.Field("line"), productLineByCode),
		StartDate:     start,
	}, nil
}

// RebuildProductTimeline recomputes every product's end date as the next
// version's start date minus one day, per product number ordered by start
// date, yielding a non-overlapping validity timeline. The latest version of
// each product keeps a nil end date. Rows with a nil start date sort before
// dated rows; ties keep input order so repeated runs produce identical
// output. The slice order itself is left untouched.
func RebuildProductTimeline(products []domain.Product) {
	groups := make(map[string][]int)
	for i := range products {
		n := products[i].ProductNumber
		groups[n] = append(groups[n], i)
	}

	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			sa, sb := products[idx[a]].StartDate, products[idx[b]].StartDate
			switch {
			case sa == nil && sb == nil:
				return false
			case sa == nil:
				return true
			case sb == nil:
				return false
			default:
				return sa.Before(*sb)
			}
		})

		for i := range idx {
			if i == len(idx)-1 {
				products[idx[i]].EndDate = nil
				continue
			}
			next := products[idx[i+1]].StartDate
			if next == nil {
				products[idx[i]].EndDate = nil
				continue
			}
			end := next.AddDate(0, 0, -1)
			products[idx[i]].EndDate = &end
		}
	}
}
