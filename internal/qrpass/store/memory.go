package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatehouse/internal/qrpass/models"
	id "gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps passes in memory with a code index enforcing
// uniqueness.
type InMemoryStore struct {
	mu     sync.Mutex
	passes map[id.PassID]*models.Pass
	byCode map[string]id.PassID
	nextID id.PassID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		passes: make(map[id.PassID]*models.Pass),
		byCode: make(map[string]id.PassID),
	}
}

// Create stores p and assigns its id. A code already in use returns
// sentinel.ErrConflict.
func (s *InMemoryStore) Create(_ context.Context, p *models.Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byCode[p.QRCode]; taken {
		return sentinel.ErrConflict
	}
	s.nextID++
	p.ID = s.nextID
	s.passes[p.ID] = clone(p)
	s.byCode[p.QRCode] = p.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, passID id.PassID) (*models.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passes[passID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passID, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.passes[passID]), nil
}

func (s *InMemoryStore) Execute(_ context.Context, passID id.PassID, validate func(*models.Pass) error, mutate func(*models.Pass)) (*models.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.passes[passID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(stored)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.passes[passID] = working
	return clone(working), nil
}

// List returns matching passes, newest first.
func (s *InMemoryStore) List(_ context.Context, q models.Query) ([]*models.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Pass, 0)
	for _, p := range s.passes {
		if q.Matches(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func clone(p *models.Pass) *models.Pass {
	c := *p
	if p.VisitDate != nil {
		d := *p.VisitDate
		c.VisitDate = &d
	}
	c.CheckInTime = cloneTime(p.CheckInTime)
	c.CheckOutTime = cloneTime(p.CheckOutTime)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
