package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
)

// Postgres implements EventStore and ApplicationStore on pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the schema. Idempotent; called once at startup.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id               BIGINT PRIMARY KEY,
			name             TEXT        NOT NULL,
			publish_deadline TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS applications (
			id         UUID PRIMARY KEY,
			event_id   BIGINT  NOT NULL REFERENCES events (id) ON DELETE CASCADE,
			user_id    BIGINT  NOT NULL,
			body_id    BIGINT  NOT NULL,
			first_name TEXT    NOT NULL,
			last_name  TEXT    NOT NULL,
			status     TEXT    NOT NULL,
			cancelled  BOOLEAN NOT NULL DEFAULT FALSE,
			paid_fee   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS applications_event_id_idx ON applications (event_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate applications schema: %w", err)
	}
	return nil
}

func (s *Postgres) FindEvent(ctx context.Context, id domain.EventID) (*models.Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, publish_deadline FROM events WHERE id = $1`,
		id.Int64(),
	)
	var (
		ev    models.Event
		evtID int64
	)
	err := row.Scan(&evtID, &ev.Name, &ev.PublishDeadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	ev.ID = domain.EventID(evtID)
	return &ev, nil
}

func (s *Postgres) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Application, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, user_id, body_id, first_name, last_name, status, cancelled, paid_fee, created_at
		FROM applications WHERE event_id = $1 ORDER BY created_at`,
		eventID.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		var (
			app     models.Application
			rawID   string
			evtID   int64
			userID  int64
			bodyID  int64
			status  string
		)
		err := rows.Scan(&rawID, &evtID, &userID, &bodyID, &app.FirstName, &app.LastName,
			&status, &app.Cancelled, &app.PaidFee, &app.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		id, err := domain.ParseApplicationID(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse application id: %w", err)
		}
		app.ID = id
		app.EventID = domain.EventID(evtID)
		app.UserID = domain.UserID(userID)
		app.BodyID = domain.BodyID(bodyID)
		app.Status = models.Status(status)
		out = append(out, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}
