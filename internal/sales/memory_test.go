package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// memoryRepo keeps products and sales in maps. WithTx serialises callers on a
// single mutex, standing in for the row lock, and discards the working copy
// when the callback fails.
type memoryRepo struct {
	mu       sync.Mutex
	products map[int64]ProductSnapshot
	sales    []Sale
	nextID   int64

	failInsert error
	failStock  error
	txCount    int
}

func newMemoryRepo(products ...ProductSnapshot) *memoryRepo {
	m := &memoryRepo{products: map[int64]ProductSnapshot{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

type memTx struct {
	repo     *memoryRepo
	products map[int64]ProductSnapshot
	sales    []Sale
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	work := &memTx{repo: m, products: make(map[int64]ProductSnapshot, len(m.products))}
	for id, p := range m.products {
		work.products[id] = p
	}
	if err := fn(ctx, work); err != nil {
		return err
	}
	m.products = work.products
	m.sales = append(m.sales, work.sales...)
	return nil
}

func (t *memTx) GetProductForUpdate(_ context.Context, id int64) (ProductSnapshot, error) {
	p, ok := t.products[id]
	if !ok {
		return ProductSnapshot{}, ErrInvalidProduct
	}
	return p, nil
}

func (t *memTx) DecrementStock(_ context.Context, id int64, quantity int) error {
	if t.repo.failStock != nil {
		return t.repo.failStock
	}
	p := t.products[id]
	if p.Stock-quantity < 0 {
		return errors.New("check constraint products_stock_check")
	}
	p.Stock -= quantity
	t.products[id] = p
	return nil
}

func (t *memTx) InsertSale(_ context.Context, sale Sale) (Sale, error) {
	if t.repo.failInsert != nil {
		return Sale{}, t.repo.failInsert
	}
	t.repo.nextID++
	sale.ID = t.repo.nextID
	sale.CreatedAt = time.Now().UTC()
	t.sales = append(t.sales, sale)
	return sale, nil
}

func (m *memoryRepo) newestFirst() []Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]Sale(nil), m.sales...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memoryRepo) ListSales(_ context.Context, limit, offset int) ([]Sale, int, error) {
	all := m.newestFirst()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *memoryRepo) RecentSales(_ context.Context, limit int) ([]Sale, error) {
	all := m.newestFirst()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memoryRepo) EachSale(_ context.Context, fn func(Sale) error) error {
	for _, s := range m.newestFirst() {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryRepo) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memoryRepo) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}
