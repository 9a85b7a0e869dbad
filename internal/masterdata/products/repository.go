package products

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

// Repository persists products.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	All(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	LowStock(ctx context.Context) ([]Product, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the PostgreSQL product repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productSelect = `SELECT p.id, p.name, p.description, p.cost_price, p.sale_price, p.stock, p.quantity,
	p.supplier_id, s.company_name, p.created_at, p.updated_at
	FROM products p JOIN suppliers s ON s.id = p.supplier_id`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND p.name ILIKE $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := productSelect + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, scanProduct)
	return out, total, err
}

func (r *repository) All(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return Product{}, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, description, cost_price, sale_price, stock, quantity, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		product.Name, product.Description, product.CostPrice, product.SalePrice,
		product.Stock, product.Quantity, product.SupplierID, now,
	).Scan(&product.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Product{}, shared.FieldErrors{"supplier_id": "does not exist"}
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $1, description = $2, cost_price = $3, sale_price = $4,
		stock = $5, quantity = $6, supplier_id = $7, updated_at = $8 WHERE id = $9`,
		product.Name, product.Description, product.CostPrice, product.SalePrice,
		product.Stock, product.Quantity, product.SupplierID, time.Now().UTC(), id,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.FieldErrors{"supplier_id": "does not exist"}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) LowStock(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` WHERE p.stock * 10 <= p.quantity * 9 ORDER BY p.stock ASC, p.name ASC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CostPrice, &p.SalePrice, &p.Stock, &p.Quantity,
		&p.SupplierID, &p.SupplierName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "stock":
		return "p.stock " + dir
	case "sale_price":
		return "p.sale_price " + dir
	case "created_at":
		return "p.created_at " + dir
	default:
		return "p.name " + dir
	}
}
