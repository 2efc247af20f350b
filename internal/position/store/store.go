package store

import (
	"context"
	"time"

	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// PositionStore defines persistence for positions and their candidates.
// Implementations return pkg/platform/sentinel errors for factual states
// (ErrNotFound for unresolved ids); services translate them.
type PositionStore interface {
	// Create persists a new position and assigns its id.
	Create(ctx context.Context, p *models.Position) error

	// Update persists an existing position. Returns sentinel.ErrNotFound if
	// the position vanished.
	Update(ctx context.Context, p *models.Position) error

	// UpdateStatus persists only the derived status. Deadline callbacks use
	// it so a re-derivation cannot overwrite fields changed by a concurrent
	// user update.
	UpdateStatus(ctx context.Context, id domain.PositionID, status models.Status, at time.Time) error

	// FindByID loads a single position.
	FindByID(ctx context.Context, id domain.PositionID) (*models.Position, error)

	// ListByEvent returns an event's positions ordered by id.
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Position, error)

	// ListAll returns every position; used to rebuild deadline timers when
	// the process starts.
	ListAll(ctx context.Context) ([]*models.Position, error)

	// AddCandidate persists a candidacy on a position.
	AddCandidate(ctx context.Context, c *models.Candidate) error

	// CountNonRejected counts the position's candidates in any non-rejected
	// state. This aggregate drives the backfill rule.
	CountNonRejected(ctx context.Context, id domain.PositionID) (int, error)
}
