package models

import (
	"strings"
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

// Status is the approval state of a visitor request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// VisitRequest is a visitor's request to enter on behalf of a flat.
//
// Check-in and check-out are independent of status: a request stays APPROVED
// after the visitor has come and gone. CheckInTime is only ever set while
// APPROVED, and CheckOutTime only after CheckInTime.
type VisitRequest struct {
	ID          id.VisitID `json:"id"`
	VisitorName string     `json:"name"`
	FlatNo      string     `json:"flatNo"`
	Relation    string     `json:"relation"`
	Purpose     string     `json:"purpose"`
	VisitDate   *id.Date   `json:"visitDate"`
	// ArrivedAt is when the guard logged an unannounced visitor at the gate.
	ArrivedAt         *time.Time `json:"arrivedAt,omitempty"`
	CheckInTime       *time.Time `json:"checkInTime"`
	CheckOutTime      *time.Time `json:"checkOutTime"`
	Status            Status     `json:"status"`
	CreatedByResident bool       `json:"createdByResident"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Details are the visitor facts supplied by whoever opens the request.
type Details struct {
	VisitorName string
	FlatNo      string
	Relation    string
	Purpose     string
}

func (d *Details) Normalize() {
	d.VisitorName = strings.TrimSpace(d.VisitorName)
	d.FlatNo = strings.TrimSpace(d.FlatNo)
	d.Relation = strings.TrimSpace(d.Relation)
	d.Purpose = strings.TrimSpace(d.Purpose)
}

// NewVisitRequest opens a request from the given origin. The origin decides
// the initial status and which timestamps are stamped.
func NewVisitRequest(origin VisitOrigin, d Details, now time.Time, today id.Date) (*VisitRequest, error) {
	d.Normalize()
	if d.VisitorName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visitor name is required")
	}
	if d.FlatNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "flat number is required")
	}
	if origin == nil {
		origin = GuardInitiated{}
	}
	v := &VisitRequest{
		VisitorName: d.VisitorName,
		FlatNo:      d.FlatNo,
		Relation:    d.Relation,
		Purpose:     d.Purpose,
		CreatedAt:   now,
	}
	origin.initialize(v, now, today)
	return v, nil
}

func (v *VisitRequest) IsCheckedIn() bool {
	return v.CheckInTime != nil
}

// CanApprove rejects approval of a declined request. Approving an already
// approved request is allowed and changes nothing.
func (v *VisitRequest) CanApprove() error {
	if v.Status == StatusDeclined {
		return dErrors.New(dErrors.CodeInvalidState, "visit request has been declined")
	}
	return nil
}

// ApplyApproval marks the request approved, dating it today if undated.
func (v *VisitRequest) ApplyApproval(today id.Date) {
	v.Status = StatusApproved
	if v.VisitDate == nil {
		v.VisitDate = id.DatePtr(today)
	}
}

// Approve validates and applies approval in one call.
// Prefer CanApprove + ApplyApproval for Execute callback pattern.
func (v *VisitRequest) Approve(today id.Date) error {
	if err := v.CanApprove(); err != nil {
		return err
	}
	v.ApplyApproval(today)
	return nil
}

// CanDecline rejects declining a visitor who is already inside.
func (v *VisitRequest) CanDecline() error {
	if v.IsCheckedIn() {
		return dErrors.New(dErrors.CodeInvalidState, "visitor has already checked in")
	}
	return nil
}

func (v *VisitRequest) ApplyDecline() {
	v.Status = StatusDeclined
}

// Decline validates and applies declining in one call.
func (v *VisitRequest) Decline() error {
	if err := v.CanDecline(); err != nil {
		return err
	}
	v.ApplyDecline()
	return nil
}

// Validate reports whether the request admits entry at the gate today. It
// never mutates the request.
func (v *VisitRequest) Validate(today id.Date) error {
	if v.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "visit request is not approved")
	}
	if v.VisitDate != nil && *v.VisitDate != today {
		return dErrors.New(dErrors.CodeInvalidState, "visit is not scheduled for today")
	}
	return nil
}

// Redeem stamps the entry time the first time a valid request is presented
// and reports whether it did. Call Validate first.
func (v *VisitRequest) Redeem(now time.Time) bool {
	if v.CheckInTime != nil {
		return false
	}
	v.CheckInTime = &now
	return true
}

// CanCheckIn requires an approved request whose visitor has not yet entered.
func (v *VisitRequest) CanCheckIn() error {
	if v.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "visit request is not approved")
	}
	if v.IsCheckedIn() {
		return dErrors.New(dErrors.CodeAlreadyDone, "visitor already checked in")
	}
	return nil
}

func (v *VisitRequest) ApplyCheckIn(now time.Time) {
	v.CheckInTime = &now
}

// CanCheckOut requires a prior check-in and no earlier check-out.
func (v *VisitRequest) CanCheckOut() error {
	if !v.IsCheckedIn() {
		return dErrors.New(dErrors.CodeInvalidState, "visitor has not checked in")
	}
	if v.CheckOutTime != nil {
		return dErrors.New(dErrors.CodeAlreadyDone, "visitor already checked out")
	}
	return nil
}

func (v *VisitRequest) ApplyCheckOut(now time.Time) {
	v.CheckOutTime = &now
}
