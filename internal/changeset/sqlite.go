package changeset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps change-sets in a SQLite database. Changes, summary and report are
// stored as JSON text columns.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (and migrates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; transactions below rely on it.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &SQLiteStore{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS change_sets (
  id TEXT PRIMARY KEY,
  producerSlug TEXT NOT NULL,
  producerName TEXT NOT NULL,
  scheduledDate TEXT NOT NULL,
  createdAt TEXT NOT NULL,
  status TEXT NOT NULL,
  fingerprint TEXT NOT NULL,
  appliedAt TEXT,
  claimedAt TEXT,
  lastError TEXT NOT NULL DEFAULT '',
  changesJson TEXT NOT NULL,
  summaryJson TEXT NOT NULL,
  reportJson TEXT
);
CREATE INDEX IF NOT EXISTS idx_change_sets_status ON change_sets(status, scheduledDate);
CREATE INDEX IF NOT EXISTS idx_change_sets_producer ON change_sets(producerSlug, fingerprint);
`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate change_sets: %w", err)
	}
	// databases created before claim timestamps were recorded
	if _, err := s.conn.Exec(`ALTER TABLE change_sets ADD COLUMN claimedAt TEXT`); err != nil &&
		!strings.Contains(err.Error(), "duplicate column") {
		return fmt.Errorf("failed to migrate change_sets: %w", err)
	}
	return nil
}

const sqliteColumns = `id, producerSlug, producerName, scheduledDate, createdAt, status, fingerprint,
  appliedAt, claimedAt, lastError, changesJson, summaryJson, reportJson`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*ChangeSet, error) {
	var (
		cs                         ChangeSet
		scheduled, created, status string
		appliedAt, claimedAt       sql.NullString
		report                     sql.NullString
		changes, summary           string
	)
	err := row.Scan(&cs.ID, &cs.ProducerSlug, &cs.ProducerName, &scheduled, &created, &status,
		&cs.Fingerprint, &appliedAt, &claimedAt, &cs.LastError, &changes, &summary, &report)
	if err != nil {
		return nil, err
	}
	cs.Status = Status(status)

	if cs.ScheduledDate, err = time.Parse(time.RFC3339Nano, scheduled); err != nil {
		return nil, fmt.Errorf("bad scheduledDate for %s: %w", cs.ID, err)
	}
	if cs.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("bad createdAt for %s: %w", cs.ID, err)
	}
	if appliedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, appliedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad appliedAt for %s: %w", cs.ID, err)
		}
		cs.AppliedAt = &t
	}
	if claimedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, claimedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad claimedAt for %s: %w", cs.ID, err)
		}
		cs.ClaimedAt = &t
	}
	if err := json.Unmarshal([]byte(changes), &cs.Changes); err != nil {
		return nil, fmt.Errorf("bad changes for %s: %w", cs.ID, err)
	}
	if err := json.Unmarshal([]byte(summary), &cs.Summary); err != nil {
		return nil, fmt.Errorf("bad summary for %s: %w", cs.ID, err)
	}
	if report.Valid {
		cs.Report = &ApplyReport{}
		if err := json.Unmarshal([]byte(report.String), cs.Report); err != nil {
			return nil, fmt.Errorf("bad report for %s: %w", cs.ID, err)
		}
	}
	return &cs, nil
}

// sqliteArgs returns every column value after id, in sqliteColumns order
func sqliteArgs(cs *ChangeSet) ([]any, error) {
	changes, err := json.Marshal(cs.Changes)
	if err != nil {
		return nil, err
	}
	summary, err := json.Marshal(cs.Summary)
	if err != nil {
		return nil, err
	}
	var appliedAt, claimedAt, report sql.NullString
	if cs.AppliedAt != nil {
		appliedAt = sql.NullString{String: cs.AppliedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	if cs.ClaimedAt != nil {
		claimedAt = sql.NullString{String: cs.ClaimedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	if cs.Report != nil {
		b, err := json.Marshal(cs.Report)
		if err != nil {
			return nil, err
		}
		report = sql.NullString{String: string(b), Valid: true}
	}
	return []any{
		cs.ProducerSlug, cs.ProducerName,
		cs.ScheduledDate.UTC().Format(time.RFC3339Nano),
		cs.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(cs.Status), cs.Fingerprint, appliedAt, claimedAt, cs.LastError,
		string(changes), string(summary), report,
	}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, cs *ChangeSet) error {
	args, err := sqliteArgs(cs)
	if err != nil {
		return fmt.Errorf("failed to encode change-set: %w", err)
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO change_sets (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{cs.ID}, args...)...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: id %s already exists", ErrValidation, cs.ID)
		}
		return fmt.Errorf("failed to insert change-set: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*ChangeSet, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM change_sets WHERE id = ?`, id)
	cs, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load change-set %s: %w", id, err)
	}
	return cs, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*ChangeSet, error) {
	query := `SELECT ` + sqliteColumns + ` FROM change_sets WHERE 1 = 1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ProducerSlug != "" {
		query += ` AND producerSlug = ?`
		args = append(args, filter.ProducerSlug)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list change-sets: %w", err)
	}
	defer rows.Close()

	out := []*ChangeSet{}
	for rows.Next() {
		cs, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list change-sets: %w", err)
	}
	sortChangeSets(out)
	return out, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, mutate func(*ChangeSet) error) (*ChangeSet, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cs, err := scanSQLite(tx.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM change_sets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load change-set %s: %w", id, err)
	}

	if err := mutate(cs); err != nil {
		return nil, err
	}

	args, err := sqliteArgs(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change-set: %w", err)
	}
	_, err = tx.ExecContext(ctx, `UPDATE change_sets SET producerSlug = ?, producerName = ?, scheduledDate = ?,
  createdAt = ?, status = ?, fingerprint = ?, appliedAt = ?, claimedAt = ?, lastError = ?, changesJson = ?, summaryJson = ?,
  reportJson = ? WHERE id = ?`, append(args, id)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update change-set %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit change-set %s: %w", id, err)
	}
	return cs, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string, check func(*ChangeSet) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cs, err := scanSQLite(tx.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM change_sets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load change-set %s: %w", id, err)
	}
	if check != nil {
		if err := check(cs); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM change_sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete change-set %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit change-set %s: %w", id, err)
	}
	return nil
}
