package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/qrpass/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

func newPass(t *testing.T, code, flat string, date *id.Date) *models.Pass {
	t.Helper()
	p, err := models.NewPass(models.Details{VisitorName: "Guest", FlatNo: flat, VisitDate: date}, code, time.Now())
	require.NoError(t, err)
	return p
}

func TestInMemoryCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Create(ctx, newPass(t, "code-1", "A", nil)))
	err := s.Create(ctx, newPass(t, "code-1", "B", nil))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	found, err := s.FindByCode(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "A", found.FlatNo)

	_, err = s.FindByCode(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryExecuteSingleRedemption(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	p := newPass(t, "code-2", "A", nil)
	require.NoError(t, s.Create(ctx, p))

	now := time.Now()
	redeem := func() error {
		_, err := s.Execute(ctx, p.ID,
			func(p *models.Pass) error { return p.CanCheckIn(id.DateOf(now)) },
			func(p *models.Pass) { p.ApplyCheckIn(now) },
		)
		return err
	}
	require.NoError(t, redeem())
	assert.Error(t, redeem())

	stored, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, stored.Status)
}

func TestInMemoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	d := id.NewDate(2026, 10, 16)
	require.NoError(t, s.Create(ctx, newPass(t, "a", "A", &d)))
	require.NoError(t, s.Create(ctx, newPass(t, "b", "A", nil)))
	require.NoError(t, s.Create(ctx, newPass(t, "c", "B", &d)))

	all, err := s.List(ctx, models.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, id.PassID(3), all[0].ID)

	flatDay, err := s.List(ctx, models.Query{FlatNo: "A", Date: &d})
	require.NoError(t, err)
	require.Len(t, flatDay, 1)
	assert.Equal(t, "a", flatDay[0].QRCode)
}
