package domain

import (
	"strconv"
	"strings"

	dErrors "gatehouse/pkg/domain-errors"
)

// Typed identifiers keep record ids from being swapped at call sites. All are
// positive integers assigned by the store.
type (
	VisitID      int64
	PassID       int64
	GuardID      int64
	ResidentID   int64
	AttendanceID int64
	PackageID    int64
	ComplaintID  int64
)

func (i VisitID) String() string      { return strconv.FormatInt(int64(i), 10) }
func (i PassID) String() string       { return strconv.FormatInt(int64(i), 10) }
func (i GuardID) String() string      { return strconv.FormatInt(int64(i), 10) }
func (i ResidentID) String() string   { return strconv.FormatInt(int64(i), 10) }
func (i AttendanceID) String() string { return strconv.FormatInt(int64(i), 10) }
func (i PackageID) String() string    { return strconv.FormatInt(int64(i), 10) }
func (i ComplaintID) String() string  { return strconv.FormatInt(int64(i), 10) }

// ParseVisitID parses a visit request id from a path or query value.
func ParseVisitID(s string) (VisitID, error) {
	n, err := parsePositive(s, "visitor id")
	return VisitID(n), err
}

// ParsePassID parses a QR pass id.
func ParsePassID(s string) (PassID, error) {
	n, err := parsePositive(s, "pass id")
	return PassID(n), err
}

// ParseGuardID parses a guard id.
func ParseGuardID(s string) (GuardID, error) {
	n, err := parsePositive(s, "guard id")
	return GuardID(n), err
}

// ParseResidentID parses a resident id.
func ParseResidentID(s string) (ResidentID, error) {
	n, err := parsePositive(s, "resident id")
	return ResidentID(n), err
}

func ParsePackageID(s string) (PackageID, error) {
	n, err := parsePositive(s, "package id")
	return PackageID(n), err
}

func ParseComplaintID(s string) (ComplaintID, error) {
	n, err := parsePositive(s, "complaint id")
	return ComplaintID(n), err
}

func parsePositive(s, what string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" must be positive")
	}
	return n, nil
}
