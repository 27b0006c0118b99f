package console

import "strings"

// StatusAll matches every status.
const StatusAll = "all"

// Filter narrows a held list.
type Filter struct {
	Search string `form:"search" json:"search"`
	Status string `form:"status" json:"status"`
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Search) == "" && f.anyStatus()
}

func (f Filter) anyStatus() bool {
	return f.Status == "" || strings.EqualFold(f.Status, StatusAll)
}

// MatchStatus reports whether status passes the status filter.
func (f Filter) MatchStatus(status string) bool {
	return f.anyStatus() || strings.EqualFold(f.Status, status)
}

// MatchSearch reports whether any field contains the search term, ignoring case.
func (f Filter) MatchSearch(fields ...string) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
