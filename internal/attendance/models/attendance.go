package models

import (
	"time"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

// Record is one guard's attendance for one calendar day. There is at most one
// per (GuardID, AttendanceDate).
type Record struct {
	ID             id.AttendanceID `json:"id"`
	GuardID        id.GuardID      `json:"guardId"`
	AttendanceDate id.Date         `json:"attendanceDate"`
	CheckInTime    *time.Time      `json:"checkInTime"`
	CheckOutTime   *time.Time      `json:"checkOutTime"`
}

// ApplyCheckIn overwrites any earlier check-in for the day.
func (r *Record) ApplyCheckIn(now time.Time) {
	r.CheckInTime = &now
}

// CanCheckOut requires a check-in on the same day. Repeated checkouts are
// allowed and overwrite.
func (r *Record) CanCheckOut() error {
	if r.CheckInTime == nil {
		return dErrors.New(dErrors.CodeInvalidState, "guard has not checked in today")
	}
	return nil
}

func (r *Record) ApplyCheckOut(now time.Time) {
	r.CheckOutTime = &now
}

// OnDuty is a guard who checked in on a given day, with the directory details
// the admin console shows alongside the punches.
type OnDuty struct {
	GuardID      id.GuardID `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Contact      string     `json:"contact"`
	Shift        string     `json:"shift"`
	CheckInTime  *time.Time `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
}
