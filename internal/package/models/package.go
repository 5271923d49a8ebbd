// Package models holds parcels left at the gate for a flat and the rules
// for handing them over.
package models

import (
	"crypto/subtle"
	"strings"
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDelivered Status = "DELIVERED"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusDelivered
}

// ParseStatus accepts the status in any letter case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status can only be PENDING or DELIVERED")
	}
	return s, nil
}

// Package is a parcel expected at, or waiting at, the gate. The delivery OTP
// is never serialised; the resident sees it once, at registration.
type Package struct {
	ID             id.PackageID `json:"id"`
	TrackingNumber string       `json:"trackingNumber"`
	Description    string       `json:"description"`
	Sender         string       `json:"sender"`
	ResidentName   string       `json:"residentName"`
	FlatNo         string       `json:"flatNo"`
	Status         Status       `json:"status"`
	ExpectedDate   id.Date      `json:"expectedDate"`
	DeliveredAt    *time.Time   `json:"deliveredAt"`
	DeliveryOTP    string       `json:"-"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// Details is the resident-editable part of a package.
type Details struct {
	TrackingNumber string
	Description    string
	Sender         string
	ResidentName   string
	FlatNo         string
	ExpectedDate   id.Date
	DeliveryOTP    string
}

// Normalize trims every field and checks the required ones.
func (d *Details) Normalize() error {
	d.TrackingNumber = strings.TrimSpace(d.TrackingNumber)
	d.Description = strings.TrimSpace(d.Description)
	d.Sender = strings.TrimSpace(d.Sender)
	d.ResidentName = strings.TrimSpace(d.ResidentName)
	d.FlatNo = strings.TrimSpace(d.FlatNo)
	d.DeliveryOTP = strings.TrimSpace(d.DeliveryOTP)
	if d.Description == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "package description is required")
	}
	if d.FlatNo == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "flat number is required")
	}
	if d.ExpectedDate.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "expected date is required")
	}
	return nil
}

// NewPackage registers a pending package. The caller supplies the OTP when
// the resident left it blank.
func NewPackage(d Details, now time.Time) (*Package, error) {
	if err := d.Normalize(); err != nil {
		return nil, err
	}
	if d.DeliveryOTP == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "delivery OTP is required")
	}
	p := &Package{Status: StatusPending, CreatedAt: now}
	p.assign(d)
	return p, nil
}

func (p *Package) assign(d Details) {
	p.TrackingNumber = d.TrackingNumber
	p.Description = d.Description
	p.Sender = d.Sender
	p.ResidentName = d.ResidentName
	p.FlatNo = d.FlatNo
	p.ExpectedDate = d.ExpectedDate
	if d.DeliveryOTP != "" {
		p.DeliveryOTP = d.DeliveryOTP
	}
}

// CanEdit holds details fixed once the parcel has been handed over.
func (p *Package) CanEdit() error {
	if p.Status == StatusDelivered {
		return dErrors.New(dErrors.CodeInvalidState, "package cannot be updated after it has been delivered")
	}
	return nil
}

// ApplyEdit replaces the details with d, which must be normalised. A blank
// OTP keeps the current one.
func (p *Package) ApplyEdit(d Details) {
	p.assign(d)
}

// CanDeliverWith checks otp against the package. A delivered package refuses
// every OTP, including the right one.
func (p *Package) CanDeliverWith(otp string) error {
	if p.Status == StatusDelivered {
		return dErrors.New(dErrors.CodeAlreadyDone, "package has already been delivered")
	}
	if p.DeliveryOTP == "" {
		return dErrors.New(dErrors.CodeInvalidState, "package does not have an OTP configured")
	}
	if subtle.ConstantTimeCompare([]byte(p.DeliveryOTP), []byte(strings.TrimSpace(otp))) != 1 {
		return dErrors.New(dErrors.CodeValidation, "invalid OTP, please check and try again")
	}
	return nil
}

func (p *Package) ApplyDelivery(now time.Time) {
	p.Status = StatusDelivered
	p.DeliveredAt = &now
}

// ApplyStatus is the guard's manual override. Moving back to pending clears
// the delivery time.
func (p *Package) ApplyStatus(s Status, now time.Time) {
	switch s {
	case StatusDelivered:
		if p.Status != StatusDelivered {
			p.ApplyDelivery(now)
		}
	case StatusPending:
		p.Status = StatusPending
		p.DeliveredAt = nil
	}
}

// Query selects packages for the resident and gate lists. Zero fields do not
// constrain.
type Query struct {
	FlatNo string
	Status Status
	Date   *id.Date
}

func (q Query) Matches(p *Package) bool {
	if q.FlatNo != "" && p.FlatNo != q.FlatNo {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Date != nil && p.ExpectedDate != *q.Date {
		return false
	}
	return true
}

// Registered is returned to the resident once, carrying the OTP to pass on
// to whoever collects the parcel.
type Registered struct {
	*Package
	DeliveryOTP string `json:"deliveryOtp"`
}

// Delivered is the gate's answer to a verified OTP.
type Delivered struct {
	Message string   `json:"message"`
	Package *Package `json:"package"`
}
