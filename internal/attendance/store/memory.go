package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatehouse/internal/attendance/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

type dayKey struct {
	guard id.GuardID
	day   id.Date
}

// InMemoryStore keys records by (guard, day) so the upsert is a map write
// under the mutex.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[dayKey]*models.Record
	nextID  id.AttendanceID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[dayKey]*models.Record)}
}

func (s *InMemoryStore) UpsertCheckIn(_ context.Context, guardID id.GuardID, day id.Date, now time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey{guard: guardID, day: day}
	r, ok := s.records[key]
	if !ok {
		s.nextID++
		r = &models.Record{ID: s.nextID, GuardID: guardID, AttendanceDate: day}
		s.records[key] = r
	}
	r.ApplyCheckIn(now)
	return clone(r), nil
}

func (s *InMemoryStore) Execute(_ context.Context, guardID id.GuardID, day id.Date, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[dayKey{guard: guardID, day: day}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)
	return clone(r), nil
}

func (s *InMemoryStore) ListByDate(_ context.Context, day id.Date) ([]*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Record, 0)
	for key, r := range s.records {
		if key.day == day {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuardID < out[j].GuardID })
	return out, nil
}

func clone(r *models.Record) *models.Record {
	c := *r
	if r.CheckInTime != nil {
		t := *r.CheckInTime
		c.CheckInTime = &t
	}
	if r.CheckOutTime != nil {
		t := *r.CheckOutTime
		c.CheckOutTime = &t
	}
	return &c
}
