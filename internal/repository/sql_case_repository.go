package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/pkg/database"
)

var schemaStatements = map[string][]string{
	database.DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			technology TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			opened_at TEXT NOT NULL DEFAULT '',
			closed_at TEXT NOT NULL DEFAULT '',
			days_open REAL,
			initial_response REAL,
			final_resolution REAL,
			rma_count INTEGER NOT NULL DEFAULT 0,
			owner TEXT NOT NULL DEFAULT '',
			contract_type TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS case_imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			imported_at TEXT NOT NULL,
			row_count INTEGER NOT NULL
		)`,
	},
	database.DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS cases (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			technology VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(255) NOT NULL DEFAULT '',
			priority VARCHAR(255) NOT NULL DEFAULT '',
			opened_at VARCHAR(32) NOT NULL DEFAULT '',
			closed_at VARCHAR(32) NOT NULL DEFAULT '',
			days_open DOUBLE NULL,
			initial_response DOUBLE NULL,
			final_resolution DOUBLE NULL,
			rma_count BIGINT NOT NULL DEFAULT 0,
			owner VARCHAR(255) NOT NULL DEFAULT '',
			contract_type VARCHAR(255) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS case_imports (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			imported_at VARCHAR(32) NOT NULL,
			row_count BIGINT NOT NULL
		)`,
	},
}

// SQLCaseRepository stores imported cases in a SQL table and serves them as a source.
type SQLCaseRepository struct {
	db     *sql.DB
	driver string
	name   string
}

// NewSQLCaseRepository wraps an open pool. name labels the store in the
// dataset identity and must not carry credentials.
func NewSQLCaseRepository(db *sql.DB, driver, name string) *SQLCaseRepository {
	return &SQLCaseRepository{db: db, driver: driver, name: name}
}

func (r *SQLCaseRepository) Name() string {
	return fmt.Sprintf("sql:%s:%s", r.driver, r.name)
}

// Migrate creates the tables if they do not exist.
func (r *SQLCaseRepository) Migrate(ctx context.Context) error {
	stmts, ok := schemaStatements[r.driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q", r.driver)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *SQLCaseRepository) revision(ctx context.Context) (int64, error) {
	var rev sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM case_imports`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("query import revision: %w", err)
	}
	return rev.Int64, nil
}

// Identity changes with every import.
func (r *SQLCaseRepository) Identity(ctx context.Context) (string, error) {
	rev, err := r.revision(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sql:%s:%s:rev%d", r.driver, r.name, rev), nil
}

// Load returns every stored case. A store that was never imported into is Missing.
func (r *SQLCaseRepository) Load(ctx context.Context) (*models.Dataset, error) {
	rev, err := r.revision(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}
	identity := fmt.Sprintf("sql:%s:%s:rev%d", r.driver, r.name, rev)
	if rev == 0 {
		return &models.Dataset{Source: identity, Header: models.CanonicalHeader, Missing: true}, nil
	}

	const query = `
		SELECT technology, status, priority, opened_at, closed_at,
		       days_open, initial_response, final_resolution,
		       rma_count, owner, contract_type
		FROM cases
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query cases: %v", ErrUnreadableSource, err)
	}
	defer rows.Close()

	ds := &models.Dataset{
		Source: identity,
		Header: models.CanonicalHeader,
		Stats:  models.LoadStats{Encoding: r.driver},
	}
	for rows.Next() {
		var (
			rec            models.CaseRecord
			opened, closed string
		)
		if err := rows.Scan(&rec.Technology, &rec.Status, &rec.Priority, &opened, &closed,
			&rec.DaysOpen, &rec.InitialResponse, &rec.FinalResolution,
			&rec.RMACount, &rec.Owner, &rec.ContractType); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}

		var bad bool
		if rec.OpenedAt, bad = parseDate(opened); bad {
			ds.Stats.CoercedDates++
		}
		if rec.ClosedAt, bad = parseDate(closed); bad {
			ds.Stats.CoercedDates++
		}
		ds.Records = append(ds.Records, rec)
		ds.Stats.Rows++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return ds, nil
}

// ReplaceAll swaps the stored cases for records in one transaction. progress,
// when non-nil, is called once per inserted row.
func (r *SQLCaseRepository) ReplaceAll(ctx context.Context, records []models.CaseRecord, progress func()) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cases`); err != nil {
		return fmt.Errorf("clear cases: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cases (technology, status, priority, opened_at, closed_at,
			days_open, initial_response, final_resolution, rma_count, owner, contract_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.Technology, rec.Status, rec.Priority,
			formatDate(rec.OpenedAt), formatDate(rec.ClosedAt),
			rec.DaysOpen, rec.InitialResponse, rec.FinalResolution,
			rec.RMACount, rec.Owner, rec.ContractType); err != nil {
			return fmt.Errorf("insert case %d: %w", i, err)
		}
		if progress != nil {
			progress()
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO case_imports (imported_at, row_count) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), len(records)); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
