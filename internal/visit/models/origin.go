package models

import (
	"time"

	id "gatehouse/pkg/domain"
)

// VisitOrigin says who opened a visitor request. The set of origins is closed:
// only GuardInitiated and ResidentInitiated satisfy it.
type VisitOrigin interface {
	initialize(v *VisitRequest, now time.Time, today id.Date)
	// Name is the origin as it appears in logs and audit events.
	Name() string
}

// GuardInitiated is a visitor who turned up unannounced. The request waits
// for the flat's approval, and the guard's arrival time is kept.
type GuardInitiated struct{}

func (GuardInitiated) initialize(v *VisitRequest, now time.Time, today id.Date) {
	v.Status = StatusPending
	v.VisitDate = id.DatePtr(today)
	v.ArrivedAt = &now
	v.CreatedByResident = false
}

func (GuardInitiated) Name() string { return "guard" }

// ResidentInitiated is a visit scheduled ahead by the resident, so it starts
// approved and nobody has entered yet.
type ResidentInitiated struct{}

func (ResidentInitiated) initialize(v *VisitRequest, _ time.Time, today id.Date) {
	v.Status = StatusApproved
	v.VisitDate = id.DatePtr(today)
	v.CheckInTime = nil
	v.CheckOutTime = nil
	v.CreatedByResident = true
}

func (ResidentInitiated) Name() string { return "resident" }
