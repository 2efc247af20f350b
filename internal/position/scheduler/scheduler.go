// Package scheduler maintains the process-local table of pending position
// deadlines: at most one timer per (position, boundary kind). It is rebuilt
// from persisted positions at startup and on every save.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LeonVreling/oms-statutory/pkg/clock"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// Kind names a window boundary.
type Kind string

const (
	KindOpen  Kind = "open"
	KindClose Kind = "close"
)

// Callback is invoked when a deadline fires. The target position may have
// vanished between scheduling and firing; implementations swallow that case.
type Callback func(ctx context.Context, positionID domain.PositionID, kind Kind)

type registration struct {
	timer clock.Timer
	seq   uint64
}

// Scheduler arms one-shot timers at position window boundaries. Registering
// a deadline for a (position, kind) pair replaces any prior pending timer of
// that pair, so repeated saves never accumulate duplicate firings. A replaced
// timer that already slipped past Stop is discarded by a sequence check, so
// no stale timer from a prior window can fire after re-registration.
type Scheduler struct {
	clock  clock.Clock
	cb     Callback
	logger *slog.Logger

	mu      sync.Mutex
	nextSeq uint64
	pending map[domain.PositionID]map[Kind]registration
	stopped bool
}

func New(clk clock.Clock, cb Callback, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:   clk,
		cb:      cb,
		logger:  logger,
		pending: make(map[domain.PositionID]map[Kind]registration),
	}
}

// Register arms a timer firing at the given instant. Instants at or before
// the current time fire best-effort-soon rather than being silently missed.
func (s *Scheduler) Register(at time.Time, positionID domain.PositionID, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if prev, ok := s.pending[positionID][kind]; ok {
		prev.timer.Stop()
	}

	s.nextSeq++
	seq := s.nextSeq
	d := at.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	timer := s.clock.AfterFunc(d, func() { s.fire(positionID, kind, seq) })

	if s.pending[positionID] == nil {
		s.pending[positionID] = make(map[Kind]registration)
	}
	s.pending[positionID][kind] = registration{timer: timer, seq: seq}
}

// ClearAll cancels every pending timer for a position. Clearing a position
// with no pending timers is a no-op, never an error.
func (s *Scheduler) ClearAll(positionID domain.PositionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.pending[positionID] {
		reg.timer.Stop()
	}
	delete(s.pending, positionID)
}

// Stop cancels all pending timers. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, kinds := range s.pending {
		for _, reg := range kinds {
			reg.timer.Stop()
		}
		delete(s.pending, id)
	}
}

func (s *Scheduler) fire(positionID domain.PositionID, kind Kind, seq uint64) {
	s.mu.Lock()
	reg, ok := s.pending[positionID][kind]
	if !ok || reg.seq != seq {
		// Cleared or replaced after this timer was already past Stop.
		s.mu.Unlock()
		return
	}
	delete(s.pending[positionID], kind)
	if len(s.pending[positionID]) == 0 {
		delete(s.pending, positionID)
	}
	s.mu.Unlock()

	s.logger.Debug("position deadline fired", "position_id", positionID, "kind", kind)
	s.cb(context.Background(), positionID, kind)
}
