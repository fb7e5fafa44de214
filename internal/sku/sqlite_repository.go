package sku

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores SKUs in a SQLite file through modernc.org/sqlite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository wraps an open database handle.
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: conn, now: func() time.Time { return time.Now().UTC() }}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS drug_skus (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	ndc           TEXT NOT NULL,
	name          TEXT NOT NULL,
	manufacturer  TEXT NOT NULL,
	dosage_form   TEXT NOT NULL,
	strength      TEXT NOT NULL,
	package_size  TEXT NOT NULL,
	gtin          TEXT,
	image_url     TEXT,
	status        TEXT NOT NULL DEFAULT 'DRAFT',
	created_at    TEXT NOT NULL,
	last_modified TEXT NOT NULL,
	created_by    TEXT,
	reviewed_by   TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS drug_skus_live_ndc ON drug_skus (ndc) WHERE status <> 'DELETED';
CREATE INDEX IF NOT EXISTS drug_skus_name ON drug_skus (name);
`

// Migrate creates the table and indexes when missing.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sku: migrate sqlite: %w", err)
	}
	return nil
}

const sqliteInsertSKU = `INSERT INTO drug_skus
	(ndc, name, manufacturer, dosage_form, strength, package_size, gtin, image_url, status, created_by, reviewed_by, created_at, last_modified)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts a record after checking ndc availability in the same transaction.
func (r *SQLiteRepository) Create(ctx context.Context, s SKU) (SKU, error) {
	var created SKU
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if s.holdsNDC() {
			if err := sqliteEnsureNDCFree(ctx, tx, s.NDC, 0); err != nil {
				return err
			}
		}
		stamp := formatTime(r.now())
		res, err := tx.ExecContext(ctx, sqliteInsertSKU,
			s.NDC, s.Name, s.Manufacturer, s.DosageForm, s.Strength, s.PackageSize,
			s.GTIN, s.ImageURL, string(s.Status), s.CreatedBy, s.ReviewedBy, stamp, stamp)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanSQLiteSKU(tx.QueryRowContext(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = ?", id))
		return err
	})
	if err != nil {
		return SKU{}, translateSQLiteError(err)
	}
	return created, nil
}

// Get loads one record.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (SKU, error) {
	s, err := scanSQLiteSKU(r.db.QueryRowContext(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = ?", id))
	if err != nil {
		return SKU{}, translateSQLiteError(err)
	}
	return s, nil
}

// List returns one page of matches and the total match count.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]SKU, int, error) {
	countSQL, pageSQL, countArgs, pageArgs := sqliteDialect.listQueries(f)

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sku: count: %w", err)
	}
	items, err := r.queryMany(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Replace overwrites every caller-controlled field.
func (r *SQLiteRepository) Replace(ctx context.Context, id int64, s SKU) (SKU, error) {
	return r.modify(ctx, id, func(cur SKU) SKU { return cur.replaceWith(s) })
}

// Patch changes only the fields set in p.
func (r *SQLiteRepository) Patch(ctx context.Context, id int64, p Patch) (SKU, error) {
	return r.modify(ctx, id, p.Apply)
}

const sqliteUpdateSKU = `UPDATE drug_skus SET
	ndc = ?, name = ?, manufacturer = ?, dosage_form = ?, strength = ?, package_size = ?,
	gtin = ?, image_url = ?, status = ?, reviewed_by = ?, last_modified = ?
	WHERE id = ?`

func (r *SQLiteRepository) modify(ctx context.Context, id int64, change func(SKU) SKU) (SKU, error) {
	var updated SKU
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := scanSQLiteSKU(tx.QueryRowContext(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = ?", id))
		if err != nil {
			return err
		}
		next := change(cur)
		if next.holdsNDC() && (next.NDC != cur.NDC || !cur.holdsNDC()) {
			if err := sqliteEnsureNDCFree(ctx, tx, next.NDC, id); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, sqliteUpdateSKU,
			next.NDC, next.Name, next.Manufacturer, next.DosageForm, next.Strength, next.PackageSize,
			next.GTIN, next.ImageURL, string(next.Status), next.ReviewedBy, formatTime(r.now()), id); err != nil {
			return err
		}
		updated, err = scanSQLiteSKU(tx.QueryRowContext(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = ?", id))
		return err
	})
	if err != nil {
		return SKU{}, translateSQLiteError(err)
	}
	return updated, nil
}

// Delete removes the row.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM drug_skus WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sku: delete %d: %w", id, err)
	}
	return requireAffected(res)
}

// Duplicates groups records sharing a name.
func (r *SQLiteRepository) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := r.queryMany(ctx, sqliteDialect.duplicatesQuery())
	if err != nil {
		return nil, err
	}
	return groupDuplicates(rows), nil
}

// InvalidStatuses lists records whose status is outside the enumerated set.
func (r *SQLiteRepository) InvalidStatuses(ctx context.Context) ([]SKU, error) {
	return r.queryMany(ctx, invalidStatusesQuery())
}

// SetStatus rewrites the status of one record.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE drug_skus SET status = ?, last_modified = ? WHERE id = ?",
		string(status), formatTime(r.now()), id)
	if err != nil {
		return translateSQLiteError(fmt.Errorf("sku: set status %d: %w", id, err))
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sku: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sku: commit tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryMany(ctx context.Context, query string, args ...any) ([]SKU, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sku: query: %w", err)
	}
	defer rows.Close()

	items := make([]SKU, 0)
	for rows.Next() {
		s, err := scanSQLiteSKU(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sku: iterate: %w", err)
	}
	return items, nil
}

func sqliteEnsureNDCFree(ctx context.Context, tx *sql.Tx, ndc string, exceptID int64) error {
	var n int
	if err := tx.QueryRowContext(ctx, sqliteDialect.ndcTakenQuery(), ndc, exceptID).Scan(&n); err != nil {
		return fmt.Errorf("sku: check ndc: %w", err)
	}
	if n > 0 {
		return ErrDuplicateNDC
	}
	return nil
}

func scanSQLiteSKU(row rowScanner) (SKU, error) {
	var (
		s                SKU
		status           string
		created, changed string
	)
	err := row.Scan(&s.ID, &s.NDC, &s.Name, &s.Manufacturer, &s.DosageForm, &s.Strength, &s.PackageSize,
		&s.GTIN, &s.ImageURL, &status, &created, &changed, &s.CreatedBy, &s.ReviewedBy)
	if err != nil {
		return SKU{}, err
	}
	s.Status = Status(status)
	if s.CreatedAt, err = parseTime(created); err != nil {
		return SKU{}, fmt.Errorf("sku: created_at of %d: %w", s.ID, err)
	}
	if s.LastModified, err = parseTime(changed); err != nil {
		return SKU{}, fmt.Errorf("sku: last_modified of %d: %w", s.ID, err)
	}
	return s, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func translateSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")) {
			return ErrDuplicateNDC
		}
	}
	return err
}
