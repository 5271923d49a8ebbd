package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
)

func TestPassLifecycle(t *testing.T) {
	now := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	today := id.DateOf(now)

	p, err := NewPass(Details{VisitorName: "Sam", FlatNo: "C-9", VisitDate: id.DatePtr(today)}, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
	assert.True(t, p.CreatedByResident)

	require.NoError(t, p.Validate(today))
	assert.Error(t, p.Validate(today.AddDays(1)))

	assert.True(t, dErrors.HasCode(p.CanCheckOut(), dErrors.CodeInvalidState))

	require.NoError(t, p.CanCheckIn(today))
	p.ApplyCheckIn(now)
	assert.Equal(t, StatusCheckedIn, p.Status)

	assert.True(t, dErrors.HasCode(p.CanCheckIn(today), dErrors.CodeInvalidState), "second redemption")
	assert.Error(t, p.Validate(today), "redeemed pass no longer validates")

	require.NoError(t, p.CanCheckOut())
	p.ApplyCheckOut(now.Add(time.Hour))
	assert.Equal(t, StatusCheckedOut, p.Status)
	assert.True(t, dErrors.HasCode(p.CanCheckOut(), dErrors.CodeInvalidState))
	assert.True(t, dErrors.HasCode(p.CanCheckIn(today), dErrors.CodeInvalidState))
}

func TestCheckInHeldToValidation(t *testing.T) {
	now := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	today := id.DateOf(now)

	tomorrow, err := NewPass(Details{VisitorName: "Sam", FlatNo: "C-9", VisitDate: id.DatePtr(today.AddDays(1))}, "tok", now)
	require.NoError(t, err)
	assert.True(t, dErrors.HasCode(tomorrow.CanCheckIn(today), dErrors.CodeInvalidState))
	assert.NoError(t, tomorrow.CanCheckIn(today.AddDays(1)))

	yesterday, err := NewPass(Details{VisitorName: "Sam", FlatNo: "C-9", VisitDate: id.DatePtr(today.AddDays(-1))}, "tok2", now)
	require.NoError(t, err)
	assert.True(t, dErrors.HasCode(yesterday.CanCheckIn(today), dErrors.CodeInvalidState))
}

func TestUndatedPassValidatesAnyDay(t *testing.T) {
	p := &Pass{Status: StatusApproved}
	assert.NoError(t, p.Validate(id.NewDate(2030, 1, 1)))
}

func TestNewPassRequiresFields(t *testing.T) {
	now := time.Now()
	_, err := NewPass(Details{FlatNo: "A"}, "tok", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewPass(Details{VisitorName: "A"}, "tok", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewPass(Details{VisitorName: "A", FlatNo: "B"}, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestQueryMatches(t *testing.T) {
	d := id.NewDate(2026, 10, 16)
	p := &Pass{FlatNo: "A", VisitDate: &d}
	assert.True(t, Query{}.Matches(p))
	assert.True(t, Query{FlatNo: "A", Date: &d}.Matches(p))
	assert.False(t, Query{FlatNo: "B"}.Matches(p))
	other := d.AddDays(1)
	assert.False(t, Query{Date: &other}.Matches(p))
	assert.False(t, Query{Date: &d}.Matches(&Pass{FlatNo: "A"}))
}
