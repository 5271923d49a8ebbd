package models

import "strings"

// Filter is a case-insensitive substring search. The blank filter matches
// every record.
type Filter struct {
	Search string
}

func NewFilter(search string) Filter {
	return Filter{Search: strings.TrimSpace(search)}
}

func (f Filter) IsBlank() bool {
	return f.Search == ""
}

func (f Filter) MatchesResident(r *Resident) bool {
	return f.matchesAny(r.Name, r.FlatNo, r.Email, r.Contact)
}

func (f Filter) MatchesGuard(g *Guard) bool {
	return f.matchesAny(g.Name, g.Email, g.Contact, g.Shift)
}

func (f Filter) matchesAny(fields ...string) bool {
	if f.IsBlank() {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// LikePattern is the ILIKE argument for the same search.
func (f Filter) LikePattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(f.Search) + "%"
}
