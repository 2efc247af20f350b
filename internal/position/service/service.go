// Package service implements the position lifecycle engine: it derives and
// maintains each position's open/closed status from its time window and
// candidate count, and keeps the deadline scheduler armed at the window
// boundaries so status is re-derived exactly when it can change.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	positionmetrics "github.com/LeonVreling/oms-statutory/internal/position/metrics"
	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/internal/position/scheduler"
	"github.com/LeonVreling/oms-statutory/internal/position/store"
	"github.com/LeonVreling/oms-statutory/pkg/clock"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
	"github.com/LeonVreling/oms-statutory/pkg/requestcontext"
)

// Deadlines is the scheduler surface the engine depends on.
type Deadlines interface {
	Register(at time.Time, positionID domain.PositionID, kind scheduler.Kind)
	ClearAll(positionID domain.PositionID)
}

// Service orchestrates position lifecycle management.
type Service struct {
	positions store.PositionStore
	deadlines Deadlines
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *positionmetrics.Metrics
}

type serviceConfig struct {
	clock   clock.Clock
	logger  *slog.Logger
	metrics *positionmetrics.Metrics
}

type Option func(*serviceConfig)

// WithClock injects the time source used when deadline callbacks re-derive
// status. Tests pair it with the scheduler's fake clock.
func WithClock(clk clock.Clock) Option {
	return func(cfg *serviceConfig) { cfg.clock = clk }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithMetrics(m *positionmetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func New(positions store.PositionStore, deadlines Deadlines, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clock.System()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		positions: positions,
		deadlines: deadlines,
		clock:     cfg.clock,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// Create persists a new position. An omitted starts defaults to "now", which
// makes the position open immediately; the derived status is forced into the
// record regardless of anything the caller supplied.
func (s *Service) Create(ctx context.Context, eventID domain.EventID, in models.CreateInput) (*models.Position, error) {
	now := requestcontext.Now(ctx)

	starts := now
	if in.Starts != nil {
		starts = *in.Starts
	}
	p := &models.Position{
		EventID:   eventID,
		Name:      in.Name,
		Starts:    starts,
		Ends:      in.Ends,
		Places:    in.Places,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// A position that has never been saved has zero candidates.
	p.Status = models.DeriveStatus(p.Starts, p.Ends, now, 0, p.Places)

	if err := s.positions.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create position")
	}
	s.armDeadlines(p)

	if s.metrics != nil {
		s.metrics.IncrementCreated()
		s.metrics.IncrementStatusTransition(string(p.Status))
	}
	s.logger.InfoContext(ctx, "position created",
		"position_id", p.ID, "event_id", eventID, "status", p.Status)
	return p, nil
}

// Update applies a partial mutation and re-saves. An all-nil input is a
// successful no-op that persists the record unchanged, including its derived
// status. Timers are cleared and re-armed from scratch so no stale window
// boundary can fire.
func (s *Service) Update(ctx context.Context, eventID domain.EventID, id domain.PositionID, in models.UpdateInput) (*models.Position, error) {
	p, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	p.Apply(in)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	count, err := s.positions.CountNonRejected(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count candidates")
	}

	previous := p.Status
	p.Status = models.DeriveStatus(p.Starts, p.Ends, now, count, p.Places)
	p.UpdatedAt = now

	if err := s.positions.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update position")
	}

	s.deadlines.ClearAll(id)
	s.armDeadlines(p)

	if s.metrics != nil && p.Status != previous {
		s.metrics.IncrementStatusTransition(string(p.Status))
	}
	return p, nil
}

// SetStatus handles the direct status-set endpoint. The supplied value is
// validated but informational only; the engine re-derives status on save.
func (s *Service) SetStatus(ctx context.Context, eventID domain.EventID, id domain.PositionID, status string) (*models.Position, error) {
	if _, err := models.ParseStatus(status); err != nil {
		return nil, err
	}
	return s.Update(ctx, eventID, id, models.UpdateInput{})
}

// Get loads a single position scoped to its event.
func (s *Service) Get(ctx context.Context, eventID domain.EventID, id domain.PositionID) (*models.Position, error) {
	return s.load(ctx, eventID, id)
}

// List returns an event's positions.
func (s *Service) List(ctx context.Context, eventID domain.EventID) ([]*models.Position, error) {
	positions, err := s.positions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list positions")
	}
	return positions, nil
}

// AddCandidate records a pending candidacy while the position accepts
// applications.
func (s *Service) AddCandidate(ctx context.Context, eventID domain.EventID, id domain.PositionID, userID domain.UserID) (*models.Candidate, error) {
	p, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusOpen {
		return nil, dErrors.New(dErrors.CodeConflict, "position is closed for applications")
	}

	c := &models.Candidate{
		ID:         domain.NewCandidateID(),
		PositionID: id,
		UserID:     userID,
		Status:     models.CandidateStatusPending,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.positions.AddCandidate(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add candidate")
	}
	return c, nil
}

// HandleDeadline is the scheduler callback: it re-derives status with the
// candidate count and window as persisted at the moment it runs. A position
// deleted between scheduling and firing is an expected benign race and is
// swallowed.
func (s *Service) HandleDeadline(ctx context.Context, id domain.PositionID, kind scheduler.Kind) {
	if s.metrics != nil {
		s.metrics.IncrementDeadlineFired(string(kind))
	}

	p, err := s.positions.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logger.DebugContext(ctx, "deadline fired for vanished position", "position_id", id, "kind", kind)
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "deadline: failed to load position", "position_id", id, "error", err)
		return
	}

	count, err := s.positions.CountNonRejected(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "deadline: failed to count candidates", "position_id", id, "error", err)
		return
	}

	now := s.clock.Now()
	derived := models.DeriveStatus(p.Starts, p.Ends, now, count, p.Places)

	// Status-only write: a user update landing between the read above and
	// this point must not be clobbered by writing the whole record back.
	if err := s.positions.UpdateStatus(ctx, id, derived, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return
		}
		s.logger.ErrorContext(ctx, "deadline: failed to save position", "position_id", id, "error", err)
		return
	}

	if derived != p.Status {
		if s.metrics != nil {
			s.metrics.IncrementStatusTransition(string(derived))
		}
		s.logger.InfoContext(ctx, "position status re-derived at boundary",
			"position_id", id, "kind", kind, "status", derived)
	}
}

// RearmAll rebuilds the deadline table from persisted positions. Called once
// at startup; overdue boundaries fire immediately and converge status.
func (s *Service) RearmAll(ctx context.Context) error {
	positions, err := s.positions.ListAll(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load positions for rearm")
	}
	for _, p := range positions {
		s.armDeadlines(p)
	}
	s.logger.InfoContext(ctx, "deadline timers rebuilt", "positions", len(positions))
	return nil
}

func (s *Service) load(ctx context.Context, eventID domain.EventID, id domain.PositionID) (*models.Position, error) {
	p, err := s.positions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load position")
	}
	if p.EventID != eventID {
		return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
	}
	return p, nil
}

func (s *Service) armDeadlines(p *models.Position) {
	s.deadlines.Register(p.Starts, p.ID, scheduler.KindOpen)
	// The window is inclusive at ends, so the close-boundary re-derivation
	// must observe an instant strictly after ends or it would never close.
	s.deadlines.Register(p.Ends.Add(time.Nanosecond), p.ID, scheduler.KindClose)
}
