package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatehouse/internal/visit/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps visitor requests in a map. A single mutex covers each
// Execute callback, so validate-then-mutate is atomic per store.
type InMemoryStore struct {
	mu     sync.Mutex
	visits map[id.VisitID]*models.VisitRequest
	nextID id.VisitID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{visits: make(map[id.VisitID]*models.VisitRequest)}
}

// Create assigns the next id and stores a copy of v.
func (s *InMemoryStore) Create(_ context.Context, v *models.VisitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = s.nextID
	s.visits[v.ID] = clone(v)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, visitID id.VisitID) (*models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(v), nil
}

// Execute runs validate then mutate on one request under the store lock.
// If validate fails nothing is written and its error is returned unchanged.
func (s *InMemoryStore) Execute(_ context.Context, visitID id.VisitID, validate func(*models.VisitRequest) error, mutate func(*models.VisitRequest)) (*models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.visits[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(stored)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.visits[visitID] = working
	return clone(working), nil
}

// List returns matching requests ordered by id.
func (s *InMemoryStore) List(_ context.Context, q models.Query) ([]*models.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.VisitRequest, 0)
	for _, v := range s.visits {
		if q.Matches(v) {
			out = append(out, clone(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func clone(v *models.VisitRequest) *models.VisitRequest {
	c := *v
	if v.VisitDate != nil {
		d := *v.VisitDate
		c.VisitDate = &d
	}
	c.ArrivedAt = cloneTime(v.ArrivedAt)
	c.CheckInTime = cloneTime(v.CheckInTime)
	c.CheckOutTime = cloneTime(v.CheckOutTime)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
