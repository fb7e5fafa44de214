package sku

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rxcatalog/rxcatalog/internal/platform/db"
)

// Repository persists SKU records.
type Repository interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, s SKU) (SKU, error)
	Get(ctx context.Context, id int64) (SKU, error)
	List(ctx context.Context, f Filter) ([]SKU, int, error)
	Replace(ctx context.Context, id int64, s SKU) (SKU, error)
	Patch(ctx context.Context, id int64, p Patch) (SKU, error)
	Delete(ctx context.Context, id int64) error
	Duplicates(ctx context.Context) ([]DuplicateGroup, error)
	InvalidStatuses(ctx context.Context) ([]SKU, error)
	SetStatus(ctx context.Context, id int64, status Status) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PgxPool is the subset of *pgxpool.Pool used by PostgresRepository.
type PgxPool interface {
	dbtx
	db.TxStarter
}

// PostgresRepository stores SKUs in PostgreSQL.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository builds a repository on a pgx pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS drug_skus (
	id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	ndc           TEXT NOT NULL,
	name          TEXT NOT NULL,
	manufacturer  TEXT NOT NULL,
	dosage_form   TEXT NOT NULL,
	strength      TEXT NOT NULL,
	package_size  TEXT NOT NULL,
	gtin          TEXT,
	image_url     TEXT,
	status        TEXT NOT NULL DEFAULT 'DRAFT',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_modified TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by    TEXT,
	reviewed_by   TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS drug_skus_live_ndc ON drug_skus (ndc) WHERE status <> 'DELETED';
CREATE INDEX IF NOT EXISTS drug_skus_name ON drug_skus (name);
`

// Migrate creates the table and indexes when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("sku: migrate postgres: %w", err)
	}
	return nil
}

const pgInsertSKU = `INSERT INTO drug_skus
	(ndc, name, manufacturer, dosage_form, strength, package_size, gtin, image_url, status, created_by, reviewed_by, created_at, last_modified)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	RETURNING ` + skuColumns

// Create inserts a record after checking ndc availability in the same
// serializable transaction. A serialization failure is retried once, since a
// concurrent create of the same ndc surfaces as one; a second failure is
// reported as ErrDuplicateNDC.
func (r *PostgresRepository) Create(ctx context.Context, s SKU) (SKU, error) {
	created, err := r.create(ctx, s)
	if isSerializationFailure(err) {
		created, err = r.create(ctx, s)
	}
	if isSerializationFailure(err) {
		return SKU{}, ErrDuplicateNDC
	}
	if err != nil {
		return SKU{}, translatePgError(err)
	}
	return created, nil
}

func (r *PostgresRepository) create(ctx context.Context, s SKU) (SKU, error) {
	var created SKU
	err := db.WithTxLevel(ctx, r.pool, pgx.Serializable, func(tx pgx.Tx) error {
		if s.holdsNDC() {
			if err := pgEnsureNDCFree(ctx, tx, s.NDC, 0); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx, pgInsertSKU,
			s.NDC, s.Name, s.Manufacturer, s.DosageForm, s.Strength, s.PackageSize,
			s.GTIN, s.ImageURL, string(s.Status), s.CreatedBy, s.ReviewedBy)
		var err error
		created, err = scanPostgresSKU(row)
		return err
	})
	return created, err
}

// Get loads one record.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (SKU, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = $1", id)
	s, err := scanPostgresSKU(row)
	if err != nil {
		return SKU{}, translatePgError(err)
	}
	return s, nil
}

// List returns one page of matches and the total match count.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]SKU, int, error) {
	countSQL, pageSQL, countArgs, pageArgs := postgresDialect.listQueries(f)

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sku: count: %w", err)
	}
	items, err := r.queryMany(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Replace overwrites every caller-controlled field.
func (r *PostgresRepository) Replace(ctx context.Context, id int64, s SKU) (SKU, error) {
	return r.modify(ctx, id, func(cur SKU) SKU { return cur.replaceWith(s) })
}

// Patch changes only the fields set in p.
func (r *PostgresRepository) Patch(ctx context.Context, id int64, p Patch) (SKU, error) {
	return r.modify(ctx, id, p.Apply)
}

const pgUpdateSKU = `UPDATE drug_skus SET
	ndc = $2, name = $3, manufacturer = $4, dosage_form = $5, strength = $6, package_size = $7,
	gtin = $8, image_url = $9, status = $10, reviewed_by = $11, last_modified = now()
	WHERE id = $1
	RETURNING ` + skuColumns

func (r *PostgresRepository) modify(ctx context.Context, id int64, change func(SKU) SKU) (SKU, error) {
	var updated SKU
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		cur, err := scanPostgresSKU(tx.QueryRow(ctx, "SELECT "+skuColumns+" FROM drug_skus WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		next := change(cur)
		if next.holdsNDC() && (next.NDC != cur.NDC || !cur.holdsNDC()) {
			if err := pgEnsureNDCFree(ctx, tx, next.NDC, id); err != nil {
				return err
			}
		}
		updated, err = scanPostgresSKU(tx.QueryRow(ctx, pgUpdateSKU, id,
			next.NDC, next.Name, next.Manufacturer, next.DosageForm, next.Strength, next.PackageSize,
			next.GTIN, next.ImageURL, string(next.Status), next.ReviewedBy))
		return err
	})
	if err != nil {
		return SKU{}, translatePgError(err)
	}
	return updated, nil
}

// Delete removes the row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM drug_skus WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("sku: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Duplicates groups records sharing a name.
func (r *PostgresRepository) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := r.queryMany(ctx, postgresDialect.duplicatesQuery())
	if err != nil {
		return nil, err
	}
	return groupDuplicates(rows), nil
}

// InvalidStatuses lists records whose status is outside the enumerated set.
func (r *PostgresRepository) InvalidStatuses(ctx context.Context) ([]SKU, error) {
	return r.queryMany(ctx, invalidStatusesQuery())
}

// SetStatus rewrites the status of one record.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, "UPDATE drug_skus SET status = $2, last_modified = now() WHERE id = $1", id, string(status))
	if err != nil {
		return translatePgError(fmt.Errorf("sku: set status %d: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, sql string, args ...any) ([]SKU, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("sku: query: %w", err)
	}
	defer rows.Close()

	items := make([]SKU, 0)
	for rows.Next() {
		s, err := scanPostgresSKU(rows)
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

func pgEnsureNDCFree(ctx context.Context, q dbtx, ndc string, exceptID int64) error {
	var n int
	if err := q.QueryRow(ctx, postgresDialect.ndcTakenQuery(), ndc, exceptID).Scan(&n); err != nil {
		return fmt.Errorf("sku: check ndc: %w", err)
	}
	if n > 0 {
		return ErrDuplicateNDC
	}
	return nil
}

func scanPostgresSKU(row rowScanner) (SKU, error) {
	var (
		s       SKU
		status  string
		created time.Time
		changed time.Time
	)
	err := row.Scan(&s.ID, &s.NDC, &s.Name, &s.Manufacturer, &s.DosageForm, &s.Strength, &s.PackageSize,
		&s.GTIN, &s.ImageURL, &status, &created, &changed, &s.CreatedBy, &s.ReviewedBy)
	if err != nil {
		return SKU{}, err
	}
	s.Status = Status(status)
	s.CreatedAt = created.UTC()
	s.LastModified = changed.UTC()
	return s, nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func translatePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNDC
	}
	return err
}
