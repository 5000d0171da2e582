// Package dedupe implements the duplicate resolution policies applied after
// normalization. Both policies group candidates by business key and return
// index sets, leaving it to the caller to map indices back onto typed rows.
// Group order follows first appearance in the input so repeated runs over the
// same snapshot resolve identically.
package dedupe

import "time"

// Member is one candidate's participation in deduplication: its position in
// the candidate slice, its grouping key, and the optional ordering date.
type Member struct {
	Index   int
	Key     string
	OrderBy *time.Time
}

// LatestByDate keeps the member of each duplicate group with the latest
// order date. Members without a date lose to any dated member; equal dates
// keep the first-seen member. The returned slices hold input indices,
// winners in first-seen group order.
func LatestByDate(members []Member) (winners, losers []int) {
	order, groups := groupByKey(members)
	for _, key := range order {
		group := groups[key]
		best := 0
		for i := 1; i < len(group); i++ {
			if outranks(group[i], group[best]) {
				best = i
			}
		}
		for i, m := range group {
			if i == best {
				winners = append(winners, m.Index)
			} else {
				losers = append(losers, m.Index)
			}
		}
	}
	return winners, losers
}

// RejectAllOnConflict keeps only members whose key is unique. A group with
// more than one member survives with zero winners; every member of it is a
// loser awaiting manual investigation.
func RejectAllOnConflict(members []Member) (winners, losers []int) {
	order, groups := groupByKey(members)
	for _, key := range order {
		group := groups[key]
		if len(group) > 1 {
			for _, m := range group {
				losers = append(losers, m.Index)
			}
			continue
		}
		winners = append(winners, group[0].Index)
	}
	return winners, losers
}

// outranks reports whether a strictly beats b: dated beats undated, later
// beats earlier. Equal dates keep b, so the first-seen member of a tie wins.
func outranks(a, b Member) bool {
	switch {
	case a.OrderBy == nil:
		return false
	case b.OrderBy == nil:
		return true
	default:
		return a.OrderBy.After(*b.OrderBy)
	}
}

func groupByKey(members []Member) ([]string, map[string][]Member) {
	order := make([]string, 0, len(members))
	groups := make(map[string][]Member, len(members))
	for _, m := range members {
		if _, ok := groups[m.Key]; !ok {
			order = append(order, m.Key)
		}
		groups[m.Key] = append(groups[m.Key], m)
	}
	return order, groups
}
