package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrmodels "gatehouse/internal/qrpass/models"
	qrservice "gatehouse/internal/qrpass/service"
	qrstore "gatehouse/internal/qrpass/store"
	visitmodels "gatehouse/internal/visit/models"
	visitservice "gatehouse/internal/visit/service"
	visitstore "gatehouse/internal/visit/store"
	id "gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

func TestForFlat(t *testing.T) {
	now := time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	visits := visitservice.New(visitstore.NewInMemory())
	passes := qrservice.New(qrstore.NewInMemory())

	_, err := visits.RequestVisit(ctx, visitmodels.Details{VisitorName: "Courier", FlatNo: "A-101"})
	require.NoError(t, err)
	_, err = visits.ScheduleVisit(ctx, visitmodels.Details{VisitorName: "Aunt", FlatNo: "A-101"})
	require.NoError(t, err)
	_, err = visits.ScheduleVisit(ctx, visitmodels.Details{VisitorName: "Other", FlatNo: "B-1"})
	require.NoError(t, err)
	_, err = passes.Create(ctx, qrmodels.Details{VisitorName: "Plumber", FlatNo: "A-101", VisitDate: id.DatePtr(id.DateOf(now))})
	require.NoError(t, err)
	_, err = passes.Create(ctx, qrmodels.Details{VisitorName: "Tomorrow", FlatNo: "A-101", VisitDate: id.DatePtr(id.DateOf(now).AddDays(1))})
	require.NoError(t, err)

	d, err := New(visits, passes, nil).ForFlat(ctx, " A-101 ")
	require.NoError(t, err)
	assert.Equal(t, "A-101", d.FlatNo)
	assert.Len(t, d.PendingApprovals, 1)
	assert.Len(t, d.TodayVisits, 2)
	require.Len(t, d.TodayPasses, 1)
	assert.Equal(t, "Plumber", d.TodayPasses[0].VisitorName)
	assert.Equal(t, now, d.GeneratedAt)
}

func TestForFlatRequiresFlat(t *testing.T) {
	_, err := New(nil, nil, nil).ForFlat(context.Background(), "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestForFlatFailureCancelsSiblings(t *testing.T) {
	svc := New(slowVisits{}, failingPasses{}, nil)
	start := time.Now()
	_, err := svc.ForFlat(context.Background(), "A-101")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Less(t, time.Since(start), fetchTimeout)
}

type slowVisits struct{}

func (slowVisits) PendingApprovals(ctx context.Context, _ string) ([]*visitmodels.VisitRequest, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowVisits) TodayVisits(ctx context.Context, _ string) ([]*visitmodels.VisitRequest, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingPasses struct{}

func (failingPasses) Today(context.Context, string) ([]*qrmodels.Pass, error) {
	return nil, errors.New("store unavailable")
}
