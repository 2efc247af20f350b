// Package service implements the application visibility engine: a
// permission- and deadline-gated projector that filters, field-masks and
// annotates an event's applications for a named view.
package service

import (
	"context"
	"errors"
	"log/slog"

	applicationmetrics "github.com/LeonVreling/oms-statutory/internal/application/metrics"
	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/internal/application/store"
	"github.com/LeonVreling/oms-statutory/internal/permission"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
	"github.com/LeonVreling/oms-statutory/pkg/requestcontext"
)

// actionFor maps each view to the right checked against the core service.
func actionFor(view models.View) permission.Action {
	switch view {
	case models.ViewAll:
		return "see_applications"
	case models.ViewAccepted:
		return "see_participants_list"
	case models.ViewJuridical:
		return "see_applications_juridical"
	case models.ViewIncoming:
		return "see_applications_incoming"
	default:
		return "see_applications_network"
	}
}

// Service orchestrates view projection.
type Service struct {
	events  store.EventStore
	apps    store.ApplicationStore
	lists   store.MembersListStore
	gateway permission.Gateway
	logger  *slog.Logger
	metrics *applicationmetrics.Metrics
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *applicationmetrics.Metrics
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithMetrics(m *applicationmetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func New(events store.EventStore, apps store.ApplicationStore, lists store.MembersListStore, gateway permission.Gateway, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		events:  events,
		apps:    apps,
		lists:   lists,
		gateway: gateway,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Project produces the named view over an event's applications.
//
// Order of gates: the view name is resolved before any repository or
// permission call; the event must exist; then the permission gate runs and
// short-circuits before any filtering or masking, so a denied caller never
// sees partial data. A gateway failure is surfaced as a denial-equivalent
// error, never as a grant.
func (s *Service) Project(ctx context.Context, eventID domain.EventID, viewName string) ([]models.ProjectedApplication, error) {
	view, err := models.ParseView(viewName)
	if err != nil {
		return nil, err
	}

	ev, err := s.events.FindEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}

	now := requestcontext.Now(ctx)
	public := view.PublicAfterDeadline() && !now.Before(ev.PublishDeadline)
	if !public {
		allowed, err := s.gateway.HasRight(ctx, requestcontext.AuthToken(ctx), eventID, actionFor(view))
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncrementPermissionDenied(string(view))
			}
			return nil, dErrors.Wrap(err, dErrors.CodePermissionDenied, "permission check failed")
		}
		if !allowed {
			if s.metrics != nil {
				s.metrics.IncrementPermissionDenied(string(view))
			}
			return nil, dErrors.Newf(dErrors.CodePermissionDenied, "you cannot request the %s view for this event", view)
		}
	}

	apps, err := s.apps.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applications")
	}

	out := make([]models.ProjectedApplication, 0, len(apps))
	for _, app := range apps {
		if !view.Eligible(app) {
			continue
		}
		var annotations map[string]any
		if view == models.ViewAccepted {
			flag, err := s.isOnMembersList(ctx, app)
			if err != nil {
				return nil, err
			}
			annotations = map[string]any{"is_on_memberslist": flag}
		}
		out = append(out, view.Mask(app, annotations))
	}

	if s.metrics != nil {
		s.metrics.IncrementViewRequests(string(view))
	}
	return out, nil
}

func (s *Service) isOnMembersList(ctx context.Context, app *models.Application) (bool, error) {
	list, err := s.lists.FindByBody(ctx, app.BodyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load members list")
	}
	return IsOnList(app, list), nil
}

// RegisterMembersList stores an externally supplied roster for a body.
func (s *Service) RegisterMembersList(ctx context.Context, list *models.MembersList) error {
	if list.BodyID == 0 {
		return dErrors.NewValidation(map[string]string{"body_id": "body_id is required"})
	}
	if err := s.lists.Put(ctx, list); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store members list")
	}
	return nil
}
