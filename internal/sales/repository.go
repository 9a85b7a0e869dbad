package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by Processor.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (ProductSnapshot, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a read-committed transaction. Rows read
// with FOR UPDATE stay locked until the callback returns.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, db.ReadCommitted, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const saleColumns = `id, sale_date, product_name, supplier_name, quantity, selling_price, total_price, cost_price, total_profit, created_at`

func (r *Repository) ListSales(ctx context.Context, limit, offset int) ([]Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY sale_date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, scanSale)
	return out, total, err
}

func (r *Repository) RecentSales(ctx context.Context, limit int) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSale)
}

func (r *Repository) EachSale(ctx context.Context, fn func(Sale) error) error {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY sale_date DESC, id DESC`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return err
		}
		if err := fn(sale); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *txRepo) GetProductForUpdate(ctx context.Context, productID int64) (ProductSnapshot, error) {
	var p ProductSnapshot
	err := r.tx.QueryRow(ctx, `SELECT p.id, p.name, s.company_name, p.cost_price, p.sale_price, p.stock
		FROM products p JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.id = $1
		FOR UPDATE OF p`, productID,
	).Scan(&p.ID, &p.Name, &p.SupplierName, &p.CostPrice, &p.SalePrice, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductSnapshot{}, ErrInvalidProduct
	}
	return p, err
}

func (r *txRepo) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return errors.New("sales: stock update affected no rows")
	}
	return nil
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO sales
		(sale_date, product_name, supplier_name, quantity, selling_price, total_price, cost_price, total_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		sale.SaleDate, sale.ProductName, sale.SupplierName, sale.Quantity,
		sale.SellingPrice, sale.TotalPrice, sale.CostPrice, sale.TotalProfit,
	).Scan(&sale.ID, &sale.CreatedAt)
	return sale, err
}

func scanSale(row pgx.CollectableRow) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.SaleDate, &s.ProductName, &s.SupplierName, &s.Quantity,
		&s.SellingPrice, &s.TotalPrice, &s.CostPrice, &s.TotalProfit, &s.CreatedAt)
	return s, err
}

var _ RepositoryPort = (*Repository)(nil)
