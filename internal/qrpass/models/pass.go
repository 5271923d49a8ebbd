package models

import (
	"strings"
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

// Status is where a QR pass sits in APPROVED -> CHECKED_IN -> CHECKED_OUT.
type Status string

const (
	StatusApproved   Status = "APPROVED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
)

// Pass is a single-use QR pass issued by a resident. Its JSON form is also
// the payload printed inside the QR image, so field names are stable.
type Pass struct {
	ID                id.PassID  `json:"id"`
	VisitorName       string     `json:"name"`
	Purpose           string     `json:"purpose"`
	VisitDate         *id.Date   `json:"visitDate"`
	Relation          string     `json:"relation"`
	FlatNo            string     `json:"flatNo"`
	Status            Status     `json:"status"`
	CreatedByResident bool       `json:"createdByResident"`
	QRCode            string     `json:"qrCode"`
	CheckInTime       *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime      *time.Time `json:"checkOutTime,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Details are what the resident supplies when issuing a pass.
type Details struct {
	VisitorName string
	Purpose     string
	VisitDate   *id.Date
	Relation    string
	FlatNo      string
}

// NewPass issues an approved pass carrying code.
func NewPass(d Details, code string, now time.Time) (*Pass, error) {
	d.VisitorName = strings.TrimSpace(d.VisitorName)
	d.FlatNo = strings.TrimSpace(d.FlatNo)
	if d.VisitorName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visitor name is required")
	}
	if d.FlatNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "flat number is required")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "qr code is required")
	}
	return &Pass{
		VisitorName:       d.VisitorName,
		Purpose:           strings.TrimSpace(d.Purpose),
		VisitDate:         d.VisitDate,
		Relation:          strings.TrimSpace(d.Relation),
		FlatNo:            d.FlatNo,
		Status:            StatusApproved,
		CreatedByResident: true,
		QRCode:            code,
		CreatedAt:         now,
	}, nil
}

// Validate reports whether the pass admits entry today. It never mutates.
func (p *Pass) Validate(today id.Date) error {
	if p.Status != StatusApproved {
		return dErrors.New(dErrors.CodeInvalidState, "QR code has already been used or is not approved")
	}
	if p.VisitDate != nil && *p.VisitDate != today {
		return dErrors.New(dErrors.CodeInvalidState, "QR code is not valid for today")
	}
	return nil
}

// CanCheckIn allows redemption exactly once, and only on a day the pass
// would validate. Redeeming by id is held to the same rules as scanning.
func (p *Pass) CanCheckIn(today id.Date) error {
	return p.Validate(today)
}

func (p *Pass) ApplyCheckIn(now time.Time) {
	p.CheckInTime = &now
	p.Status = StatusCheckedIn
}

// CanCheckOut requires a redeemed pass that has not left yet.
func (p *Pass) CanCheckOut() error {
	if p.Status != StatusCheckedIn {
		return dErrors.New(dErrors.CodeInvalidState, "pass is not checked in")
	}
	return nil
}

func (p *Pass) ApplyCheckOut(now time.Time) {
	p.CheckOutTime = &now
	p.Status = StatusCheckedOut
}

// Query selects passes for history views. Zero fields do not constrain.
type Query struct {
	FlatNo string
	Date   *id.Date
}

func (q Query) Matches(p *Pass) bool {
	if q.FlatNo != "" && p.FlatNo != q.FlatNo {
		return false
	}
	if q.Date != nil && (p.VisitDate == nil || *p.VisitDate != *q.Date) {
		return false
	}
	return true
}

// Validation is the gate's answer to a scanned payload.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Visitor *Pass  `json:"visitor"`
}

// Issued is returned to the resident after a pass is created.
type Issued struct {
	VisitorID id.PassID `json:"visitorId"`
	QRCode    string    `json:"qrCode"`
	Message   string    `json:"message"`
	Success   bool      `json:"success"`
}
