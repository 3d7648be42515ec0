package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/paydesk/taxdecl/internal/domain"
)

// Repository stores component revisions append-only: every save key
// (employee, tax year, kind) has at most one revision with an open window
// (effective_till NULL). Update-mode saves rewrite that row's data; a
// forced new revision closes the window and inserts a successor. Closed
// rows are never touched again.
type Repository struct {
	db *sql.DB
}

// New opens the SQLite database.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS component_revisions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	employee_id    INTEGER NOT NULL,
	tax_year       TEXT    NOT NULL,
	kind           TEXT    NOT NULL,
	data           TEXT    NOT NULL,
	effective_from DATE    NOT NULL,
	effective_till DATE,
	notes          TEXT    NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_revisions_key
	ON component_revisions (employee_id, tax_year, kind);
CREATE UNIQUE INDEX IF NOT EXISTS idx_revisions_one_active
	ON component_revisions (employee_id, tax_year, kind)
	WHERE effective_till IS NULL;
`

// Migrate applies the schema. dbmate owns migrations in deployments; this
// exists so an in-memory database is usable directly.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *Repository) Close() error { return r.db.Close() }

// ── ComponentService ─────────────────────────────────────────────────────────

func (r *Repository) GetComponent(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) (domain.NestedRecord, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM component_revisions
		WHERE employee_id=? AND tax_year=? AND kind=? AND effective_till IS NULL`,
		employeeID, taxYear, kind).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNoExistingData
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

func (r *Repository) SaveComponent(ctx context.Context, req *domain.SaveRequest) (domain.NestedRecord, error) {
	data, err := json.Marshal(req.Component)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Kind, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var activeID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM component_revisions
		WHERE employee_id=? AND tax_year=? AND kind=? AND effective_till IS NULL`,
		req.EmployeeID, req.TaxYear, req.Kind).Scan(&activeID)
	hasActive := err == nil
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now()
	switch {
	case req.ForceNewRevision:
		from, err := time.Parse("2006-01-02", req.EffectiveFrom)
		if err != nil {
			return nil, domain.ErrEffectiveFromRequired
		}
		if hasActive {
			if _, err := tx.ExecContext(ctx, `
				UPDATE component_revisions SET effective_till=?, updated_at=? WHERE id=?`,
				from, now, activeID); err != nil {
				return nil, err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO component_revisions
				(employee_id, tax_year, kind, data, effective_from, notes, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			req.EmployeeID, req.TaxYear, req.Kind, string(data), from, req.Notes, now, now); err != nil {
			return nil, err
		}

	case hasActive:
		if _, err := tx.ExecContext(ctx, `
			UPDATE component_revisions SET data=?, notes=?, updated_at=? WHERE id=?`,
			string(data), req.Notes, now, activeID); err != nil {
			return nil, err
		}

	default:
		// First save for this key: the revision runs from the start of the
		// tax year.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO component_revisions
				(employee_id, tax_year, kind, data, effective_from, notes, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?)`,
			req.EmployeeID, req.TaxYear, req.Kind, string(data), yearStart(req.TaxYear), req.Notes, now, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return decodeRecord(string(data))
}

// ── Revisions ────────────────────────────────────────────────────────────────

func (r *Repository) ActiveRevision(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) (*domain.Revision, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, employee_id, tax_year, kind, data, effective_from, effective_till, notes, created_at, updated_at
		FROM component_revisions
		WHERE employee_id=? AND tax_year=? AND kind=? AND effective_till IS NULL`,
		employeeID, taxYear, kind)
	rev, err := scanRevision(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNoExistingData
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *Repository) History(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) ([]domain.Revision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, tax_year, kind, data, effective_from, effective_till, notes, created_at, updated_at
		FROM component_revisions
		WHERE employee_id=? AND tax_year=? AND kind=?
		ORDER BY effective_from, id`,
		employeeID, taxYear, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rev)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (*domain.Revision, error) {
	var (
		rev  domain.Revision
		raw  string
		till sql.NullTime
	)
	if err := row.Scan(
		&rev.ID, &rev.EmployeeID, &rev.TaxYear, &rev.Kind, &raw,
		&rev.EffectiveFrom, &till, &rev.Notes, &rev.CreatedAt, &rev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if till.Valid {
		rev.EffectiveTill = &till.Time
	}
	data, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	rev.Data = data
	return &rev, nil
}

func decodeRecord(raw string) (domain.NestedRecord, error) {
	var rec domain.NestedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode stored component: %w", err)
	}
	return rec, nil
}

// yearStart maps an Indian tax year label ("2024-25") to 1 April of its
// opening year. Unparseable labels fall back to today.
func yearStart(taxYear string) time.Time {
	var y int
	if _, err := fmt.Sscanf(taxYear, "%4d-", &y); err != nil || y < 1900 {
		return time.Now()
	}
	return time.Date(y, time.April, 1, 0, 0, 0, 0, time.UTC)
}
