//go:build integration

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/platform/db/dbtest"
)

func TestPostgresSupplierSummariesOneRowPerSupplier(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Open(t)
	_, err := pool.Exec(ctx, `INSERT INTO suppliers (company_name, phone, address, tax_id) VALUES
		('Acme', '555-0100', '1 Main St', 'B1'),
		('Acme', '555-0101', '2 Main St', 'B2'),
		('Globex', '555-0200', '3 Side St', 'B3')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO sales
		(sale_date, product_name, supplier_name, quantity, selling_price, total_price, cost_price, total_profit)
		VALUES ('2026-03-14', 'Widget', 'Acme', 5, 10.00, 50.00, 30.00, 20.00)`)
	require.NoError(t, err)

	got, err := NewRepository(pool).SupplierSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, row := range got[:2] {
		assert.Equal(t, "Acme", row.SupplierName)
		assert.Equal(t, 5, row.UnitsSold)
		assert.Equal(t, "20.00", row.Profit.StringFixed(2))
	}
	assert.Equal(t, "Globex", got[2].SupplierName)
	assert.Zero(t, got[2].UnitsSold)
	assert.True(t, got[2].Profit.IsZero())
}

func TestPostgresDailyRevenueWindow(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Open(t)
	_, err := pool.Exec(ctx, `INSERT INTO sales
		(sale_date, product_name, supplier_name, quantity, selling_price, total_price, cost_price, total_profit) VALUES
		('2026-03-13', 'Widget', 'Acme', 1, 10.00, 10.00, 6.00, 4.00),
		('2026-03-14', 'Widget', 'Acme', 2, 10.00, 20.00, 12.00, 8.00),
		('2026-03-14', 'Gadget', 'Acme', 1, 5.50, 5.50, 3.00, 2.50),
		('2026-02-01', 'Widget', 'Acme', 1, 10.00, 10.00, 6.00, 4.00)`)
	require.NoError(t, err)

	from := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	got, err := NewRepository(pool).DailyRevenue(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10.00", got[0].Revenue.StringFixed(2))
	assert.Equal(t, "25.50", got[1].Revenue.StringFixed(2))
}
