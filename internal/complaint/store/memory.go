package store

import (
	"context"
	"sort"
	"sync"

	"gatehouse/internal/complaint/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps complaints in a map guarded by one mutex.
type InMemoryStore struct {
	mu         sync.Mutex
	complaints map[id.ComplaintID]*models.Complaint
	nextID     id.ComplaintID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{complaints: make(map[id.ComplaintID]*models.Complaint)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.complaints[c.ID] = clone(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[complaintID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemoryStore) Execute(_ context.Context, complaintID id.ComplaintID, validate func(*models.Complaint) error, mutate func(*models.Complaint)) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.complaints[complaintID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(stored)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.complaints[complaintID] = working
	return clone(working), nil
}

// List returns matching complaints, newest first.
func (s *InMemoryStore) List(_ context.Context, q models.Query) ([]*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Complaint, 0)
	for _, c := range s.complaints {
		if q.Matches(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func clone(c *models.Complaint) *models.Complaint {
	cp := *c
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
