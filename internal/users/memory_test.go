package users

import (
	"context"
	"sync"
	"time"

	"github.com/stockdesk/stockdesk/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []User
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{nextID: 1} }

func (m *memoryRepo) ListUsers(context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]User(nil), m.users...), nil
}

func (m *memoryRepo) GetUser(_ context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *memoryRepo) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return User{}, shared.ErrDuplicate
		}
	}
	u.ID = m.nextID
	u.CreatedAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m.nextID++
	m.users = append(m.users, u)
	return u, nil
}
