// Package domain defines the typed identifiers shared across the service.
//
// Events, bodies and users are owned by the wider organisation backend and
// addressed by numeric ids; positions are owned by this service but keep the
// same numeric scheme so routes stay uniform. Candidates and applications are
// created here and use UUIDs.
package domain

import (
	"strconv"

	"github.com/google/uuid"
)

type (
	// EventID identifies a statutory event (external container entity).
	EventID int64
	// PositionID identifies an open-call position within an event.
	PositionID int64
	// BodyID identifies an organisational body (local, working group, ...).
	BodyID int64
	// UserID identifies a member in the organisation-wide user registry.
	UserID int64
)

func (id EventID) Int64() int64    { return int64(id) }
func (id PositionID) Int64() int64 { return int64(id) }
func (id BodyID) Int64() int64     { return int64(id) }
func (id UserID) Int64() int64     { return int64(id) }

func (id EventID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id PositionID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id BodyID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id UserID) String() string     { return strconv.FormatInt(int64(id), 10) }

// CandidateID identifies a single candidacy on a position.
type CandidateID uuid.UUID

func NewCandidateID() CandidateID { return CandidateID(uuid.New()) }

func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id CandidateID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps the canonical UUID form on the wire; without it the
// defined type would serialize as the underlying byte array.
func (id CandidateID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *CandidateID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CandidateID(u)
	return nil
}

// ApplicationID identifies an application submitted to an event.
type ApplicationID uuid.UUID

func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id ApplicationID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *ApplicationID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ApplicationID(u)
	return nil
}

// ParseApplicationID parses the canonical UUID form of an application id.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(u), nil
}
