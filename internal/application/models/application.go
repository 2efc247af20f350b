package models

import (
	"time"

	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// Status is the acceptance state of an application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWaitingList Status = "waiting_list"
)

// Application is a person's submission to participate in an event.
type Application struct {
	ID        domain.ApplicationID `json:"id"`
	EventID   domain.EventID       `json:"event_id"`
	UserID    domain.UserID        `json:"user_id"`
	BodyID    domain.BodyID        `json:"body_id"`
	FirstName string               `json:"first_name"`
	LastName  string               `json:"last_name"`
	Status    Status               `json:"status"`
	Cancelled bool                 `json:"cancelled"`
	PaidFee   bool                 `json:"paid_fee"`
	CreatedAt time.Time            `json:"created_at"`
}

// Event is the container entity owned by the wider backend; this service
// only needs its participants-list publish deadline to gate the accepted
// view.
type Event struct {
	ID              domain.EventID `json:"id"`
	Name            string         `json:"name"`
	PublishDeadline time.Time      `json:"publish_deadline"`
}

// Member is one entry of an externally supplied members list.
type Member struct {
	UserID    domain.UserID `json:"user_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
}

// MembersList is the roster registered for one organisational body. Supplied
// externally and read-only here.
type MembersList struct {
	BodyID  domain.BodyID `json:"body_id"`
	Members []Member      `json:"members"`
}
