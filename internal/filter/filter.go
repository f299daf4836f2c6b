// Package filter implements the list screens' status dropdown and search box.
package filter

import "strings"

// StatusAll disables the status filter.
const StatusAll = "all"

// Filterable is implemented by records that can be narrowed by status and searched by text.
type Filterable interface {
	FilterStatus() string
	SearchFields() []string
}

// Criteria is a status selection plus a free-text query.
type Criteria struct {
	Status string `form:"status"`
	Query  string `form:"q"`
}

// Empty reports whether the criteria select everything.
func (c Criteria) Empty() bool {
	return statusBypassed(c.Status) && strings.TrimSpace(c.Query) == ""
}

// Apply returns the items matching both the status and the query, preserving order. With empty
// criteria the input slice is returned as is.
func Apply[T Filterable](items []T, c Criteria) []T {
	if c.Empty() {
		return items
	}
	status := strings.TrimSpace(c.Status)
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if !statusBypassed(status) && !strings.EqualFold(strings.TrimSpace(item.FilterStatus()), status) {
			continue
		}
		if query != "" && !matchesQuery(item.SearchFields(), query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func statusBypassed(status string) bool {
	status = strings.TrimSpace(status)
	return status == "" || strings.EqualFold(status, StatusAll)
}

// matchesQuery expects query already lower-cased. Empty fields never match.
func matchesQuery(fields []string, query string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
