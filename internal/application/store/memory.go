package store

import (
	"context"
	"sort"
	"sync"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
)

// InMemory implements the event, application and members-list stores with
// maps. Tests and dependency-free local development use it; production wires
// Postgres for events/applications and Redis for members lists.
type InMemory struct {
	mu           sync.RWMutex
	events       map[domain.EventID]models.Event
	applications map[domain.EventID][]models.Application
	lists        map[domain.BodyID]models.MembersList
}

func NewInMemory() *InMemory {
	return &InMemory{
		events:       make(map[domain.EventID]models.Event),
		applications: make(map[domain.EventID][]models.Application),
		lists:        make(map[domain.BodyID]models.MembersList),
	}
}

func (s *InMemory) FindEvent(ctx context.Context, id domain.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, exists := s.events[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := ev
	return &cp, nil
}

// PutEvent seeds an event container.
func (s *InMemory) PutEvent(ctx context.Context, ev *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = *ev
}

func (s *InMemory) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := s.applications[eventID]
	out := make([]*models.Application, 0, len(apps))
	for _, a := range apps {
		cp := a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PutApplication seeds an application.
func (s *InMemory) PutApplication(ctx context.Context, app *models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.EventID] = append(s.applications[app.EventID], *app)
}

func (s *InMemory) FindByBody(ctx context.Context, bodyID domain.BodyID) (*models.MembersList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, exists := s.lists[bodyID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := list
	return &cp, nil
}

func (s *InMemory) Put(ctx context.Context, list *models.MembersList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list.BodyID] = *list
	return nil
}
