package models

import (
	id "gatehouse/pkg/domain"
)

// Query selects visitor requests. Zero-valued fields do not constrain.
type Query struct {
	FlatNo string
	Status Status
	// Date restricts to one visit date. With IncludeUndated, requests that
	// have no visit date yet also match.
	Date              *id.Date
	IncludeUndated    bool
	CreatedByResident *bool
}

// Matches applies the query to a single request.
func (q Query) Matches(v *VisitRequest) bool {
	if q.FlatNo != "" && v.FlatNo != q.FlatNo {
		return false
	}
	if q.Status != "" && v.Status != q.Status {
		return false
	}
	if q.CreatedByResident != nil && v.CreatedByResident != *q.CreatedByResident {
		return false
	}
	if q.Date != nil {
		switch {
		case v.VisitDate == nil:
			return q.IncludeUndated
		case *v.VisitDate != *q.Date:
			return false
		}
	}
	return true
}
