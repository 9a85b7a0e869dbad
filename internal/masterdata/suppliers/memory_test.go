package suppliers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/stockdesk/stockdesk/internal/masterdata/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Supplier
	inUse  map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[int64]Supplier{}, inUse: map[int64]bool{}}
}

func (m *memoryRepo) List(_ context.Context, f shared.ListFilters) ([]Supplier, int, error) {
	all, _ := m.All(context.Background())
	var out []Supplier
	for _, s := range all {
		if f.Search == "" || strings.Contains(strings.ToLower(s.CompanyName), strings.ToLower(f.Search)) {
			out = append(out, s)
		}
	}
	total := len(out)
	if f.Limit > 0 {
		start := f.Offset()
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *memoryRepo) All(context.Context) ([]Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Supplier, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, s Supplier) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.rows[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, s Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	s.ID = id
	m.rows[id] = s
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	if m.inUse[id] {
		return shared.ErrInUse
	}
	delete(m.rows, id)
	return nil
}
