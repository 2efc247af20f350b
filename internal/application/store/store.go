package store

import (
	"context"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// EventStore resolves event containers. Events are owned by the wider
// backend; this service only reads them.
type EventStore interface {
	FindEvent(ctx context.Context, id domain.EventID) (*models.Event, error)
}

// ApplicationStore defines read access to an event's applications.
type ApplicationStore interface {
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Application, error)
}

// MembersListStore holds the externally supplied rosters, keyed by body.
// Returns sentinel.ErrNotFound when no list is registered for a body.
type MembersListStore interface {
	FindByBody(ctx context.Context, bodyID domain.BodyID) (*models.MembersList, error)
	Put(ctx context.Context, list *models.MembersList) error
}
