package models

import (
	"time"

	"github.com/LeonVreling/oms-statutory/pkg/domain"
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
)

// Status is the derived availability of a position.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ParseStatus validates a caller-supplied status literal. The value is only
// informational on mutation paths (status is always engine-derived), but an
// unrecognized literal is still a validation error.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusClosed:
		return Status(s), nil
	default:
		return "", dErrors.NewValidation(map[string]string{"status": "status must be open or closed"})
	}
}

// Position is a bounded-capacity, time-windowed application slot within an
// event.
//
// Invariants:
//   - Name is non-empty
//   - Ends is strictly after Starts
//   - Places >= 1
//   - Status is a pure function of (Starts, Ends, now, candidate count,
//     Places); it is recomputed on every save and on every fired deadline,
//     and callers cannot set it through mutation inputs.
type Position struct {
	ID        domain.PositionID `json:"id"`
	EventID   domain.EventID    `json:"event_id"`
	Name      string            `json:"name"`
	Starts    time.Time         `json:"starts"`
	Ends      time.Time         `json:"ends"`
	Places    int               `json:"places"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DeriveStatus computes a position's status. Pure: identical inputs always
// yield the same status.
//
// Precedence:
//  1. now within [starts, ends], inclusive on both ends -> open
//  2. window passed and the position is not filled beyond its places -> open
//     (backfill rule: under-filled positions stay open past the deadline)
//  3. otherwise -> closed
func DeriveStatus(starts, ends, now time.Time, nonRejected, places int) Status {
	if !now.Before(starts) && !now.After(ends) {
		return StatusOpen
	}
	if now.After(ends) && nonRejected <= places {
		return StatusOpen
	}
	return StatusClosed
}

// Validate checks field-level invariants. Independent of status derivation.
func (p *Position) Validate() error {
	fields := make(map[string]string)
	if p.Name == "" {
		fields["name"] = "name is required"
	}
	if p.Starts.IsZero() {
		fields["starts"] = "starts is required"
	}
	if p.Ends.IsZero() {
		fields["ends"] = "ends is required"
	} else if !p.Ends.After(p.Starts) {
		fields["ends"] = "ends must be after starts"
	}
	if p.Places < 1 {
		fields["places"] = "places must be at least 1"
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// CreateInput carries the caller-settable fields for a new position. There is
// deliberately no status field: status cannot be supplied, only derived.
type CreateInput struct {
	Name string `json:"name"`
	// Starts may be omitted; the position then opens immediately at "now".
	Starts *time.Time `json:"starts"`
	Ends   time.Time  `json:"ends"`
	Places int        `json:"places"`
}

// UpdateInput carries optional mutations. All-nil means an empty mutation
// body: a successful no-op re-save that leaves every field, including the
// derived status, unchanged by the caller.
type UpdateInput struct {
	Name   *string    `json:"name"`
	Starts *time.Time `json:"starts"`
	Ends   *time.Time `json:"ends"`
	Places *int       `json:"places"`
}

// Apply copies the supplied fields onto the position.
func (p *Position) Apply(in UpdateInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Starts != nil {
		p.Starts = *in.Starts
	}
	if in.Ends != nil {
		p.Ends = *in.Ends
	}
	if in.Places != nil {
		p.Places = *in.Places
	}
}

// CandidateStatus tracks a single candidacy. Only the aggregate count of
// non-rejected candidates feeds status derivation.
type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
)

// Candidate is a person applying to a position.
type Candidate struct {
	ID         domain.CandidateID `json:"id"`
	PositionID domain.PositionID  `json:"position_id"`
	UserID     domain.UserID      `json:"user_id"`
	Status     CandidateStatus    `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}
