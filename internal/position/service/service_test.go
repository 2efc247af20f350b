package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/internal/position/scheduler"
	"github.com/LeonVreling/oms-statutory/internal/position/store"
	"github.com/LeonVreling/oms-statutory/pkg/clock"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
	"github.com/LeonVreling/oms-statutory/pkg/requestcontext"
)

const week = 7 * 24 * time.Hour

// LifecycleSuite drives the engine with a fake clock wired into both the
// scheduler and the service, so boundary behavior is tested by advancing
// time instead of sleeping.
type LifecycleSuite struct {
	suite.Suite
	clock   *clock.Fake
	store   *store.InMemory
	sched   *scheduler.Scheduler
	service *Service
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.clock = clock.NewFake(time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var svc *Service
	s.sched = scheduler.New(s.clock, func(ctx context.Context, id domain.PositionID, kind scheduler.Kind) {
		svc.HandleDeadline(ctx, id, kind)
	}, logger)
	svc = New(s.store, s.sched, WithClock(s.clock), WithLogger(logger))
	s.service = svc
}

func (s *LifecycleSuite) TearDownTest() {
	s.sched.Stop()
}

// ctx returns a context whose request time tracks the fake clock.
func (s *LifecycleSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.clock.Now())
}

func (s *LifecycleSuite) create(starts *time.Time, ends time.Time, places int) *models.Position {
	p, err := s.service.Create(s.ctx(), 1, models.CreateInput{
		Name:   "Chairperson",
		Starts: starts,
		Ends:   ends,
		Places: places,
	})
	s.Require().NoError(err)
	return p
}

func (s *LifecycleSuite) reload(id domain.PositionID) *models.Position {
	p, err := s.store.FindByID(context.Background(), id)
	s.Require().NoError(err)
	return p
}

func (s *LifecycleSuite) addCandidates(id domain.PositionID, n int, status models.CandidateStatus) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.store.AddCandidate(context.Background(), &models.Candidate{
			ID:         domain.NewCandidateID(),
			PositionID: id,
			UserID:     domain.UserID(100 + i),
			Status:     status,
		}))
	}
}

func ptr[T any](v T) *T { return &v }

func (s *LifecycleSuite) TestCreate() {
	now := s.clock.Now()

	s.Run("window containing now is open", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)
		s.Equal(models.StatusOpen, p.Status)
	})

	s.Run("future window is closed until it starts", func() {
		p := s.create(ptr(now.Add(time.Hour)), now.Add(week), 1)
		s.Equal(models.StatusClosed, p.Status)
	})

	s.Run("omitted starts defaults to now and opens immediately", func() {
		p := s.create(nil, now.Add(week), 1)
		s.Equal(now, p.Starts)
		s.Equal(models.StatusOpen, p.Status)
	})

	s.Run("validation failure aborts the save", func() {
		before, lerr := s.store.ListAll(context.Background())
		s.Require().NoError(lerr)

		_, err := s.service.Create(s.ctx(), 1, models.CreateInput{
			Name:   "",
			Ends:   now.Add(week),
			Places: 0,
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.FieldsOf(err)
		s.Contains(fields, "name")
		s.Contains(fields, "places")

		after, lerr := s.store.ListAll(context.Background())
		s.Require().NoError(lerr)
		s.Len(after, len(before), "nothing may be persisted on validation failure")
	})

	s.Run("ends not after starts aborts the save", func() {
		_, err := s.service.Create(s.ctx(), 1, models.CreateInput{
			Name:   "Chairperson",
			Starts: ptr(now),
			Ends:   now,
			Places: 1,
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *LifecycleSuite) TestOpenBoundaryFires() {
	now := s.clock.Now()
	p := s.create(ptr(now.Add(time.Hour)), now.Add(week), 1)
	s.Equal(models.StatusClosed, p.Status)

	s.clock.Advance(time.Hour)
	s.Equal(models.StatusOpen, s.reload(p.ID).Status)
}

func (s *LifecycleSuite) TestCloseBoundaryRespectsBackfill() {
	now := s.clock.Now()

	s.Run("under-filled position stays open past the deadline", func() {
		p := s.create(ptr(now), now.Add(time.Hour), 2)
		s.addCandidates(p.ID, 2, models.CandidateStatusPending)

		s.clock.Advance(2 * time.Hour)
		s.Equal(models.StatusOpen, s.reload(p.ID).Status)
	})

	s.Run("over-filled position closes at the deadline", func() {
		p := s.create(ptr(now), now.Add(time.Hour), 2)
		s.addCandidates(p.ID, 3, models.CandidateStatusPending)

		s.clock.Advance(2 * time.Hour)
		s.Equal(models.StatusClosed, s.reload(p.ID).Status)
	})

	s.Run("rejected candidates do not count against places", func() {
		p := s.create(ptr(now), now.Add(time.Hour), 1)
		s.addCandidates(p.ID, 1, models.CandidateStatusApproved)
		s.addCandidates(p.ID, 5, models.CandidateStatusRejected)

		s.clock.Advance(2 * time.Hour)
		s.Equal(models.StatusOpen, s.reload(p.ID).Status)
	})
}

func (s *LifecycleSuite) TestUpdate() {
	now := s.clock.Now()

	s.Run("empty body is a no-op that preserves the derived status", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)

		updated, err := s.service.Update(s.ctx(), 1, p.ID, models.UpdateInput{})
		s.Require().NoError(err)
		s.Equal(models.StatusOpen, updated.Status)
		s.Equal(p.Name, updated.Name)
		s.Equal(p.Starts, updated.Starts)
	})

	s.Run("moving the window re-derives status", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)
		s.addCandidates(p.ID, 5, models.CandidateStatusPending)

		// Shrink the window into the past; 5 candidates > 1 place closes it.
		updated, err := s.service.Update(s.ctx(), 1, p.ID, models.UpdateInput{
			Ends: ptr(now.Add(-time.Hour)),
		})
		s.Require().NoError(err)
		s.Equal(models.StatusClosed, updated.Status)
	})

	s.Run("update on unknown position is not found", func() {
		_, err := s.service.Update(s.ctx(), 1, 404, models.UpdateInput{})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("update scoped to the wrong event is not found", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)
		_, err := s.service.Update(s.ctx(), 2, p.ID, models.UpdateInput{})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid mutation aborts without persisting", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 3)
		_, err := s.service.Update(s.ctx(), 1, p.ID, models.UpdateInput{Places: ptr(0)})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(3, s.reload(p.ID).Places)
	})
}

func (s *LifecycleSuite) TestUpdateReplacesStaleTimers() {
	now := s.clock.Now()
	p := s.create(ptr(now), now.Add(time.Hour), 1)
	s.addCandidates(p.ID, 2, models.CandidateStatusPending)

	// Push the close boundary out before the original one elapses.
	_, err := s.service.Update(s.ctx(), 1, p.ID, models.UpdateInput{
		Ends: ptr(now.Add(3 * time.Hour)),
	})
	s.Require().NoError(err)

	// The original boundary at +1h must not fire: status stays open even
	// though 2 candidates > 1 place would close it past the deadline.
	s.clock.Advance(2 * time.Hour)
	s.Equal(models.StatusOpen, s.reload(p.ID).Status)

	s.clock.Advance(time.Hour + time.Second)
	s.Equal(models.StatusClosed, s.reload(p.ID).Status)
}

func (s *LifecycleSuite) TestSetStatus() {
	now := s.clock.Now()

	s.Run("caller-supplied status is informational only", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)

		updated, err := s.service.SetStatus(s.ctx(), 1, p.ID, "closed")
		s.Require().NoError(err)
		s.Equal(models.StatusOpen, updated.Status, "engine-derived status wins")
	})

	s.Run("unrecognized status literal is a validation error", func() {
		p := s.create(ptr(now.Add(-week)), now.Add(week), 1)

		_, err := s.service.SetStatus(s.ctx(), 1, p.ID, "reopened")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *LifecycleSuite) TestDeadlineForVanishedPositionIsSwallowed() {
	now := s.clock.Now()
	p := s.create(ptr(now), now.Add(time.Hour), 1)

	s.store.Delete(context.Background(), p.ID)

	s.NotPanics(func() { s.clock.Advance(2 * time.Hour) })
}

func (s *LifecycleSuite) TestAddCandidate() {
	now := s.clock.Now()

	s.Run("open position accepts a candidacy", func() {
		p := s.create(ptr(now.Add(-time.Hour)), now.Add(time.Hour), 1)
		c, err := s.service.AddCandidate(s.ctx(), 1, p.ID, 42)
		s.Require().NoError(err)
		s.Equal(models.CandidateStatusPending, c.Status)

		count, err := s.store.CountNonRejected(context.Background(), p.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("closed position rejects candidacies", func() {
		p := s.create(ptr(now.Add(time.Hour)), now.Add(week), 1)
		_, err := s.service.AddCandidate(s.ctx(), 1, p.ID, 42)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *LifecycleSuite) TestRearmAll() {
	now := s.clock.Now()
	p := s.create(ptr(now), now.Add(time.Hour), 1)
	s.addCandidates(p.ID, 2, models.CandidateStatusPending)

	// Simulate a restart: drop all timers, then rebuild from the store.
	s.sched.ClearAll(p.ID)
	s.Require().NoError(s.service.RearmAll(context.Background()))

	s.clock.Advance(2 * time.Hour)
	s.Equal(models.StatusClosed, s.reload(p.ID).Status)
}

func (s *LifecycleSuite) TestRearmAllFiresOverdueBoundaries() {
	now := s.clock.Now()
	p := s.create(ptr(now), now.Add(time.Hour), 1)
	s.addCandidates(p.ID, 2, models.CandidateStatusPending)
	s.sched.ClearAll(p.ID)

	// The process was down across the close boundary.
	s.clock.Advance(5 * time.Hour)
	s.Equal(models.StatusOpen, s.reload(p.ID).Status, "stale persisted status before rearm")

	s.Require().NoError(s.service.RearmAll(context.Background()))
	s.clock.Advance(0)
	s.Equal(models.StatusClosed, s.reload(p.ID).Status)
}

func (s *LifecycleSuite) TestGetAndList() {
	now := s.clock.Now()
	p := s.create(ptr(now.Add(-week)), now.Add(week), 1)

	got, err := s.service.Get(s.ctx(), 1, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.service.Get(s.ctx(), 1, 404)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))

	listed, err := s.service.List(s.ctx(), 1)
	s.Require().NoError(err)
	s.Len(listed, 1)
}

// interleavingStore simulates a user update landing between the deadline
// callback's read and its write: the rename happens inside the
// candidate-count call, which the callback always runs before saving.
type interleavingStore struct {
	*store.InMemory
}

func (r *interleavingStore) CountNonRejected(ctx context.Context, id domain.PositionID) (int, error) {
	p, err := r.InMemory.FindByID(ctx, id)
	if err == nil {
		p.Name = "Renamed meanwhile"
		if err := r.InMemory.Update(ctx, p); err != nil {
			return 0, err
		}
	}
	return r.InMemory.CountNonRejected(ctx, id)
}

func TestDeadlineKeepsConcurrentFieldUpdates(t *testing.T) {
	fake := clock.NewFake(time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC))
	mem := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var svc *Service
	sched := scheduler.New(fake, func(ctx context.Context, id domain.PositionID, kind scheduler.Kind) {
		svc.HandleDeadline(ctx, id, kind)
	}, logger)
	defer sched.Stop()
	svc = New(&interleavingStore{InMemory: mem}, sched, WithClock(fake), WithLogger(logger))

	ctx := requestcontext.WithTime(context.Background(), fake.Now())
	p, err := svc.Create(ctx, 1, models.CreateInput{
		Name:   "Chairperson",
		Ends:   fake.Now().Add(time.Hour),
		Places: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Over-filled, so the close boundary derives closed rather than
	// staying open for backfill.
	for i := 0; i < 2; i++ {
		if err := mem.AddCandidate(context.Background(), &models.Candidate{
			ID:         domain.NewCandidateID(),
			PositionID: p.ID,
			UserID:     domain.UserID(100 + i),
			Status:     models.CandidateStatusPending,
		}); err != nil {
			t.Fatalf("add candidate: %v", err)
		}
	}

	fake.Advance(time.Hour + time.Second)

	got, err := mem.FindByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusClosed {
		t.Fatalf("expected closed after boundary, got %s", got.Status)
	}
	if got.Name != "Renamed meanwhile" {
		t.Fatalf("boundary write clobbered a concurrent update, name = %q", got.Name)
	}
}
