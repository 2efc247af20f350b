package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
)

// InMemory implements PositionStore with maps. Used in tests and for
// dependency-free local development; production uses Postgres.
type InMemory struct {
	mu         sync.RWMutex
	nextID     int64
	positions  map[domain.PositionID]models.Position
	candidates map[domain.PositionID][]models.Candidate
}

func NewInMemory() *InMemory {
	return &InMemory{
		positions:  make(map[domain.PositionID]models.Position),
		candidates: make(map[domain.PositionID][]models.Candidate),
	}
}

func (s *InMemory) Create(ctx context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextID++
		p.ID = domain.PositionID(s.nextID)
	} else if _, exists := s.positions[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.positions[p.ID] = *p
	return nil
}

func (s *InMemory) Update(ctx context.Context, p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.positions[p.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.positions[p.ID] = *p
	return nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id domain.PositionID, status models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.positions[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	s.positions[id] = p
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.PositionID) (*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.positions[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *InMemory) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Position
	for _, p := range s.positions {
		if p.EventID == eventID {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) ListAll(ctx context.Context) ([]*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Position, 0, len(s.positions))
	for _, p := range s.positions {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) AddCandidate(ctx context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.positions[c.PositionID]; !exists {
		return sentinel.ErrNotFound
	}
	s.candidates[c.PositionID] = append(s.candidates[c.PositionID], *c)
	return nil
}

func (s *InMemory) CountNonRejected(ctx context.Context, id domain.PositionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.candidates[id] {
		if c.Status != models.CandidateStatusRejected {
			count++
		}
	}
	return count, nil
}

// Delete removes a position and its candidates. Deletion is an external CRUD
// concern; the store supports it so tests can exercise the vanished-target
// race between scheduling and firing.
func (s *InMemory) Delete(ctx context.Context, id domain.PositionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, id)
	delete(s.candidates, id)
}
