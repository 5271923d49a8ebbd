package store

import (
	"context"
	"sort"
	"sync"

	"gatehouse/internal/package/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps packages in a map guarded by one mutex.
type InMemoryStore struct {
	mu       sync.Mutex
	packages map[id.PackageID]*models.Package
	nextID   id.PackageID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{packages: make(map[id.PackageID]*models.Package)}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.packages[p.ID] = clone(p)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, packageID id.PackageID) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[packageID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

// Execute runs validate then mutate on one package under the store lock.
func (s *InMemoryStore) Execute(_ context.Context, packageID id.PackageID, validate func(*models.Package) error, mutate func(*models.Package)) (*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.packages[packageID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(stored)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.packages[packageID] = working
	return clone(working), nil
}

// List returns matching packages, latest expected date first.
func (s *InMemoryStore) List(_ context.Context, q models.Query) ([]*models.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Package, 0)
	for _, p := range s.packages {
		if q.Matches(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ExpectedDate.Time(), out[j].ExpectedDate.Time()
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func clone(p *models.Package) *models.Package {
	c := *p
	if p.DeliveredAt != nil {
		t := *p.DeliveredAt
		c.DeliveredAt = &t
	}
	return &c
}
