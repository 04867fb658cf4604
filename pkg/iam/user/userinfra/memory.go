package userinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
)

// MemoryUserRepository keeps identities in a map. It enforces the same
// unique-email rule as the database adapters and is safe for concurrent use.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*user.User)}
}

var _ user.Repository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, user.ErrUserNotFound().WithDetail("email", email)
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Email]; exists {
		return user.ErrDuplicateEmail().WithDetail("email", u.Email)
	}
	r.users[u.Email] = u.Clone()
	return nil
}

func (r *MemoryUserRepository) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, email)
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, email string, patch user.Patch) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, user.ErrUserNotFound().WithDetail("email", email)
	}
	patch.Apply(u)
	return u.Clone(), nil
}

func (r *MemoryUserRepository) Ping(context.Context) error { return nil }

// Len returns the number of stored identities.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
