package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository exposes the aggregate queries over recorded sales.
type Repository interface {
	SupplierSummaries(ctx context.Context) ([]SupplierSummary, error)
	DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// SupplierSummaries reports one row per current supplier, matching sales on
// the supplier name captured at sale time. Suppliers without sales report zero.
func (r *PGRepository) SupplierSummaries(ctx context.Context) ([]SupplierSummary, error) {
	// Sales are totalled per name before the join so suppliers sharing a
	// company name each get the name's totals once.
	rows, err := r.pool.Query(ctx, `SELECT s.company_name,
		COALESCE(x.units, 0)::bigint,
		COALESCE(x.profit, 0)
		FROM suppliers s
		LEFT JOIN (
			SELECT supplier_name, SUM(quantity) AS units, SUM(total_profit) AS profit
			FROM sales
			GROUP BY supplier_name
		) x ON x.supplier_name = s.company_name
		ORDER BY s.company_name, s.id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SupplierSummary, error) {
		var s SupplierSummary
		var units int64
		if err := row.Scan(&s.SupplierName, &units, &s.Profit); err != nil {
			return SupplierSummary{}, err
		}
		s.UnitsSold = int(units)
		return s, nil
	})
}

// DailyRevenue sums total_price per sale date within [from, to].
func (r *PGRepository) DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error) {
	rows, err := r.pool.Query(ctx, `SELECT sale_date, SUM(total_price)
		FROM sales
		WHERE sale_date BETWEEN $1 AND $2
		GROUP BY sale_date
		ORDER BY sale_date`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DailyRevenue, error) {
		var d DailyRevenue
		err := row.Scan(&d.Day, &d.Revenue)
		return d, err
	})
}

var _ Repository = (*PGRepository)(nil)
