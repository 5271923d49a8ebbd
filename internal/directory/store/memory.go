package store

import (
	"context"
	"sort"
	"sync"

	"gatehouse/internal/directory/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps residents and guards in maps guarded by one mutex.
type InMemoryStore struct {
	mu           sync.RWMutex
	residents    map[id.ResidentID]*models.Resident
	guards       map[id.GuardID]*models.Guard
	nextResident id.ResidentID
	nextGuard    id.GuardID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		residents: make(map[id.ResidentID]*models.Resident),
		guards:    make(map[id.GuardID]*models.Guard),
	}
}

func (s *InMemoryStore) CreateResident(_ context.Context, r *models.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextResident++
	r.ID = s.nextResident
	c := *r
	s.residents[r.ID] = &c
	return nil
}

func (s *InMemoryStore) FindResident(_ context.Context, residentID id.ResidentID) (*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.residents[residentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *InMemoryStore) ListResidents(_ context.Context, f models.Filter) ([]*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Resident, 0, len(s.residents))
	for _, r := range s.residents {
		if f.MatchesResident(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateResident applies fn to a copy and stores it only if fn succeeds.
func (s *InMemoryStore) UpdateResident(_ context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.residents[residentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	if err := fn(&c); err != nil {
		return nil, err
	}
	s.residents[residentID] = &c
	out := c
	return &out, nil
}

func (s *InMemoryStore) CreateGuard(_ context.Context, g *models.Guard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGuard++
	g.ID = s.nextGuard
	c := *g
	s.guards[g.ID] = &c
	return nil
}

func (s *InMemoryStore) FindGuard(_ context.Context, guardID id.GuardID) (*models.Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guards[guardID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *g
	return &c, nil
}

func (s *InMemoryStore) ListGuards(_ context.Context, f models.Filter) ([]*models.Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Guard, 0, len(s.guards))
	for _, g := range s.guards {
		if f.MatchesGuard(g) {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) UpdateGuard(_ context.Context, guardID id.GuardID, fn func(*models.Guard) error) (*models.Guard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[guardID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *g
	if err := fn(&c); err != nil {
		return nil, err
	}
	s.guards[guardID] = &c
	out := c
	return &out, nil
}
