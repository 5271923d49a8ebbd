package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatehouse/pkg/domain-errors"
)

func TestRecordTransitions(t *testing.T) {
	morning := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	r := &Record{GuardID: 1}

	err := r.CanCheckOut()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	r.ApplyCheckIn(morning)
	require.NoError(t, r.CanCheckOut())

	r.ApplyCheckOut(morning.Add(8 * time.Hour))
	r.ApplyCheckOut(morning.Add(9 * time.Hour))
	assert.Equal(t, morning.Add(9*time.Hour), *r.CheckOutTime)

	r.ApplyCheckIn(morning.Add(time.Hour))
	assert.Equal(t, morning.Add(time.Hour), *r.CheckInTime)
}
