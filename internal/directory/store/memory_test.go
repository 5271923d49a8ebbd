package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatehouse/internal/directory/models"
	"gatehouse/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) addResident(name, flat string) *models.Resident {
	r, err := models.NewResident(models.ResidentFields{Name: name, FlatNo: flat}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateResident(s.ctx, r))
	return r
}

func (s *InMemoryStoreSuite) TestResidentsRoundTrip() {
	a := s.addResident("Asha", "A-101")
	b := s.addResident("Bilal", "B-202")
	s.NotEqual(a.ID, b.ID)

	got, err := s.store.FindResident(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("Bilal", got.Name)

	all, err := s.store.ListResidents(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	hits, err := s.store.ListResidents(s.ctx, models.NewFilter("b-2"))
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal(b.ID, hits[0].ID)
}

func (s *InMemoryStoreSuite) TestFindReturnsCopy() {
	a := s.addResident("Asha", "A-101")
	got, err := s.store.FindResident(s.ctx, a.ID)
	s.Require().NoError(err)
	got.Name = "changed"

	again, err := s.store.FindResident(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Asha", again.Name)
}

func (s *InMemoryStoreSuite) TestUpdateResidentKeepsOldValueOnError() {
	a := s.addResident("Asha", "A-101")
	_, err := s.store.UpdateResident(s.ctx, a.ID, func(r *models.Resident) error {
		r.Name = "half-written"
		return errors.New("rejected")
	})
	s.Error(err)

	got, err := s.store.FindResident(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Asha", got.Name)

	updated, err := s.store.UpdateResident(s.ctx, a.ID, func(r *models.Resident) error {
		r.FlatNo = "A-102"
		return nil
	})
	s.Require().NoError(err)
	s.Equal("A-102", updated.FlatNo)
}

func (s *InMemoryStoreSuite) TestGuards() {
	g, err := models.NewGuard(models.GuardFields{Name: "Ramesh", Shift: "Night"}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateGuard(s.ctx, g))

	_, err = s.store.FindGuard(s.ctx, g.ID+1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.UpdateGuard(s.ctx, g.ID+1, func(*models.Guard) error { return nil })
	s.ErrorIs(err, sentinel.ErrNotFound)

	hits, err := s.store.ListGuards(s.ctx, models.NewFilter("NIGHT"))
	s.Require().NoError(err)
	s.Len(hits, 1)
}
