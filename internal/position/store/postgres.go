package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LeonVreling/oms-statutory/internal/position/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
)

// Postgres implements PositionStore on pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the schema. Idempotent; called once at startup.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS positions (
			id         BIGSERIAL PRIMARY KEY,
			event_id   BIGINT      NOT NULL,
			name       TEXT        NOT NULL,
			starts     TIMESTAMPTZ NOT NULL,
			ends       TIMESTAMPTZ NOT NULL,
			places     INT         NOT NULL,
			status     TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS positions_event_id_idx ON positions (event_id);

		CREATE TABLE IF NOT EXISTS candidates (
			id          UUID PRIMARY KEY,
			position_id BIGINT      NOT NULL REFERENCES positions (id) ON DELETE CASCADE,
			user_id     BIGINT      NOT NULL,
			status      TEXT        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS candidates_position_id_idx ON candidates (position_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate positions schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, p *models.Position) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO positions (event_id, name, starts, ends, places, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.EventID.Int64(), p.Name, p.Starts, p.Ends, p.Places, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	p.ID = domain.PositionID(id)
	return nil
}

func (s *Postgres) Update(ctx context.Context, p *models.Position) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE positions
		SET name = $2, starts = $3, ends = $4, places = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		p.ID.Int64(), p.Name, p.Starts, p.Ends, p.Places, string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, id domain.PositionID, status models.Status, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE positions SET status = $2, updated_at = $3 WHERE id = $1`,
		id.Int64(), string(status), at,
	)
	if err != nil {
		return fmt.Errorf("update position status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.PositionID) (*models.Position, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, event_id, name, starts, ends, places, status, created_at, updated_at
		FROM positions WHERE id = $1`,
		id.Int64(),
	)
	p, err := scanPosition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find position: %w", err)
	}
	return p, nil
}

func (s *Postgres) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*models.Position, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, name, starts, ends, places, status, created_at, updated_at
		FROM positions WHERE event_id = $1 ORDER BY id`,
		eventID.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()
	return collectPositions(rows)
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.Position, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, name, starts, ends, places, status, created_at, updated_at
		FROM positions ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all positions: %w", err)
	}
	defer rows.Close()
	return collectPositions(rows)
}

func (s *Postgres) AddCandidate(ctx context.Context, c *models.Candidate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO candidates (id, position_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID.String(), c.PositionID.Int64(), c.UserID.Int64(), string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (s *Postgres) CountNonRejected(ctx context.Context, id domain.PositionID) (int, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM candidates
		WHERE position_id = $1 AND status <> $2`,
		id.Int64(), string(models.CandidateStatusRejected),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return count, nil
}

func scanPosition(row pgx.Row) (*models.Position, error) {
	var (
		p      models.Position
		id     int64
		event  int64
		status string
	)
	err := row.Scan(&id, &event, &p.Name, &p.Starts, &p.Ends, &p.Places, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = domain.PositionID(id)
	p.EventID = domain.EventID(event)
	p.Status = models.Status(status)
	return &p, nil
}

func collectPositions(rows pgx.Rows) ([]*models.Position, error) {
	var out []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return out, nil
}
