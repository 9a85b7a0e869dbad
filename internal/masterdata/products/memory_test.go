package products

import (
	"context"
	"sort"
	"sync"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[int64]Product{}}
}

func (m *memoryRepo) sorted(keep func(Product) bool, less func(a, b Product) bool) []Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byName(a, b Product) bool { return a.Name < b.Name }

func (m *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Product, int, error) {
	out := m.sorted(func(Product) bool { return true }, byName)
	return out, len(out), nil
}

func (m *memoryRepo) All(context.Context) ([]Product, error) {
	return m.sorted(func(Product) bool { return true }, byName), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, p Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	p.ID = id
	m.rows[id] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryRepo) LowStock(context.Context) ([]Product, error) {
	return m.sorted(Product.IsLowStock, func(a, b Product) bool {
		if a.Stock != b.Stock {
			return a.Stock < b.Stock
		}
		return a.Name < b.Name
	}), nil
}

type supplierRepo struct {
	rows map[int64]suppliers.Supplier
}

func (s supplierRepo) List(context.Context, shared.ListFilters) ([]suppliers.Supplier, int, error) {
	out, _ := s.All(context.Background())
	return out, len(out), nil
}

func (s supplierRepo) All(context.Context) ([]suppliers.Supplier, error) {
	out := make([]suppliers.Supplier, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s supplierRepo) Get(_ context.Context, id int64) (suppliers.Supplier, error) {
	row, ok := s.rows[id]
	if !ok {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	return row, nil
}

func (s supplierRepo) Create(context.Context, suppliers.Supplier) (suppliers.Supplier, error) {
	return suppliers.Supplier{}, nil
}

func (s supplierRepo) Update(context.Context, int64, suppliers.Supplier) error { return nil }

func (s supplierRepo) Delete(context.Context, int64) error { return nil }

func newSupplierService() *suppliers.Service {
	return suppliers.NewService(supplierRepo{rows: map[int64]suppliers.Supplier{
		1: {ID: 1, CompanyName: "Acme Tools"},
		2: {ID: 2, CompanyName: "Globex"},
	}})
}
