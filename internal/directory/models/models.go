package models

import (
	"strings"
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

type ResidentStatus string

const (
	ResidentActive   ResidentStatus = "ACTIVE"
	ResidentInactive ResidentStatus = "INACTIVE"
)

func (s ResidentStatus) IsValid() bool {
	return s == ResidentActive || s == ResidentInactive
}

// Resident lives in a flat and approves visits for it.
type Resident struct {
	ID               id.ResidentID  `json:"id"`
	Name             string         `json:"name"`
	FlatNo           string         `json:"flatNo"`
	Email            string         `json:"email"`
	Contact          string         `json:"contact"`
	EmergencyContact string         `json:"emergencyContact"`
	Status           ResidentStatus `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// ResidentFields is the writable part of a Resident.
type ResidentFields struct {
	Name             string
	FlatNo           string
	Email            string
	Contact          string
	EmergencyContact string
	Status           ResidentStatus
}

func (f *ResidentFields) normalize() error {
	f.Name = strings.TrimSpace(f.Name)
	f.FlatNo = strings.TrimSpace(f.FlatNo)
	f.Email = strings.TrimSpace(f.Email)
	f.Contact = strings.TrimSpace(f.Contact)
	f.EmergencyContact = strings.TrimSpace(f.EmergencyContact)
	if f.Status == "" {
		f.Status = ResidentActive
	}
	if f.Name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "resident name is required")
	}
	if f.FlatNo == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "flat number is required")
	}
	if !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "resident status must be ACTIVE or INACTIVE")
	}
	return nil
}

func NewResident(f ResidentFields, now time.Time) (*Resident, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	r := &Resident{CreatedAt: now}
	r.assign(f, now)
	return r, nil
}

// ApplyUpdate replaces every writable field.
func (r *Resident) ApplyUpdate(f ResidentFields, now time.Time) error {
	if err := f.normalize(); err != nil {
		return err
	}
	r.assign(f, now)
	return nil
}

func (r *Resident) assign(f ResidentFields, now time.Time) {
	r.Name = f.Name
	r.FlatNo = f.FlatNo
	r.Email = f.Email
	r.Contact = f.Contact
	r.EmergencyContact = f.EmergencyContact
	r.Status = f.Status
	r.UpdatedAt = now
}

// Guard staffs the gate and records daily attendance.
type Guard struct {
	ID        id.GuardID `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Contact   string     `json:"contact"`
	Shift     string     `json:"shift"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type GuardFields struct {
	Name    string
	Email   string
	Contact string
	Shift   string
}

func (f *GuardFields) normalize() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Contact = strings.TrimSpace(f.Contact)
	f.Shift = strings.TrimSpace(f.Shift)
	if f.Name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "guard name is required")
	}
	return nil
}

func NewGuard(f GuardFields, now time.Time) (*Guard, error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}
	g := &Guard{CreatedAt: now}
	g.assign(f, now)
	return g, nil
}

func (g *Guard) ApplyUpdate(f GuardFields, now time.Time) error {
	if err := f.normalize(); err != nil {
		return err
	}
	g.assign(f, now)
	return nil
}

func (g *Guard) assign(f GuardFields, now time.Time) {
	g.Name = f.Name
	g.Email = f.Email
	g.Contact = f.Contact
	g.Shift = f.Shift
	g.UpdatedAt = now
}
