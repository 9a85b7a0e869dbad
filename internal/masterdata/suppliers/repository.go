package suppliers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// Repository persists suppliers.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	All(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the PostgreSQL supplier repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const supplierColumns = `id, company_name, phone, address, tax_id, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND (company_name ILIKE $1 OR tax_id ILIKE $1)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, scanSupplier)
	return out, total, err
}

func (r *repository) All(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY company_name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSupplier)
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return Supplier{}, err
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanSupplier)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO suppliers (company_name, phone, address, tax_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		supplier.CompanyName, supplier.Phone, supplier.Address, supplier.TaxID, now,
	).Scan(&supplier.ID)
	if err != nil {
		return Supplier{}, err
	}
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE suppliers SET company_name = $1, phone = $2, address = $3, tax_id = $4, updated_at = $5 WHERE id = $6`,
		supplier.CompanyName, supplier.Phone, supplier.Address, supplier.TaxID, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.CollectableRow) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.CompanyName, &s.Phone, &s.Address, &s.TaxID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "tax_id":
		return "tax_id " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "company_name " + dir
	}
}
