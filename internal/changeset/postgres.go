package changeset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps change-sets in PostgreSQL. Update locks the row with
// SELECT ... FOR UPDATE so concurrent processes serialise on one set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. The caller owns the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect creates a connection pool and verifies it with a ping
func Connect(ctx context.Context, connString string, maxConns, minConns int, maxLifetime, maxIdleTime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = maxIdleTime
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return pool, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS change_sets (
	id TEXT PRIMARY KEY,
	producer_slug TEXT NOT NULL,
	producer_name TEXT NOT NULL,
	scheduled_date TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	applied_at TIMESTAMPTZ,
	claimed_at TIMESTAMPTZ,
	last_error TEXT NOT NULL DEFAULT '',
	changes JSONB NOT NULL,
	summary JSONB NOT NULL,
	report JSONB
);
ALTER TABLE change_sets ADD COLUMN IF NOT EXISTS claimed_at TIMESTAMPTZ;
CREATE INDEX IF NOT EXISTS idx_change_sets_status ON change_sets (status, scheduled_date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_change_sets_pending_fingerprint
	ON change_sets (producer_slug, fingerprint) WHERE status = 'pending';
`

// Migrate creates the change_sets table if needed
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate change_sets: %w", err)
	}
	return nil
}

const postgresColumns = `id, producer_slug, producer_name, scheduled_date, created_at, status, fingerprint,
	applied_at, claimed_at, last_error, changes, summary, report`

func scanPostgres(row pgx.Row) (*ChangeSet, error) {
	var (
		cs               ChangeSet
		status           string
		changes, summary []byte
		report           []byte
	)
	err := row.Scan(&cs.ID, &cs.ProducerSlug, &cs.ProducerName, &cs.ScheduledDate, &cs.CreatedAt,
		&status, &cs.Fingerprint, &cs.AppliedAt, &cs.ClaimedAt, &cs.LastError, &changes, &summary, &report)
	if err != nil {
		return nil, err
	}
	cs.Status = Status(status)

	if err := json.Unmarshal(changes, &cs.Changes); err != nil {
		return nil, fmt.Errorf("bad changes for %s: %w", cs.ID, err)
	}
	if err := json.Unmarshal(summary, &cs.Summary); err != nil {
		return nil, fmt.Errorf("bad summary for %s: %w", cs.ID, err)
	}
	if report != nil {
		cs.Report = &ApplyReport{}
		if err := json.Unmarshal(report, cs.Report); err != nil {
			return nil, fmt.Errorf("bad report for %s: %w", cs.ID, err)
		}
	}
	return &cs, nil
}

func postgresArgs(cs *ChangeSet) ([]any, error) {
	changes, err := json.Marshal(cs.Changes)
	if err != nil {
		return nil, err
	}
	summary, err := json.Marshal(cs.Summary)
	if err != nil {
		return nil, err
	}
	var report []byte
	if cs.Report != nil {
		if report, err = json.Marshal(cs.Report); err != nil {
			return nil, err
		}
	}
	return []any{
		cs.ProducerSlug, cs.ProducerName, cs.ScheduledDate, cs.CreatedAt, string(cs.Status),
		cs.Fingerprint, cs.AppliedAt, cs.ClaimedAt, cs.LastError, changes, summary, report,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) Create(ctx context.Context, cs *ChangeSet) error {
	args, err := postgresArgs(cs)
	if err != nil {
		return fmt.Errorf("failed to encode change-set: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO change_sets (`+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, append([]any{cs.ID}, args...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: producer %s", ErrDuplicate, cs.ProducerSlug)
		}
		return fmt.Errorf("error inserting change-set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*ChangeSet, error) {
	cs, err := scanPostgres(s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM change_sets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying change-set %s: %w", id, err)
	}
	return cs, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*ChangeSet, error) {
	query := `SELECT ` + postgresColumns + ` FROM change_sets
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR producer_slug = $2)
		ORDER BY scheduled_date, created_at, id`

	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.ProducerSlug)
	if err != nil {
		return nil, fmt.Errorf("error listing change-sets: %w", err)
	}
	defer rows.Close()

	out := []*ChangeSet{}
	for rows.Next() {
		cs, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing change-sets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, mutate func(*ChangeSet) error) (*ChangeSet, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cs, err := scanPostgres(tx.QueryRow(ctx, `SELECT `+postgresColumns+` FROM change_sets WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error locking change-set %s: %w", id, err)
	}

	if err := mutate(cs); err != nil {
		return nil, err
	}

	args, err := postgresArgs(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change-set: %w", err)
	}
	_, err = tx.Exec(ctx, `UPDATE change_sets SET producer_slug = $1, producer_name = $2, scheduled_date = $3,
		created_at = $4, status = $5, fingerprint = $6, applied_at = $7, claimed_at = $8, last_error = $9,
		changes = $10, summary = $11, report = $12 WHERE id = $13`, append(args, id)...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: producer %s", ErrDuplicate, cs.ProducerSlug)
		}
		return nil, fmt.Errorf("error updating change-set %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing change-set %s: %w", id, err)
	}
	return cs, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string, check func(*ChangeSet) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cs, err := scanPostgres(tx.QueryRow(ctx, `SELECT `+postgresColumns+` FROM change_sets WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("error locking change-set %s: %w", id, err)
	}
	if check != nil {
		if err := check(cs); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM change_sets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting change-set %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing change-set %s: %w", id, err)
	}
	return nil
}
