package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-character-api/internal/model"
)

// MemoryUserRepository keeps identities in process memory, keyed by
// lower-cased email. All reads and writes go through mu.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: map[string]model.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) (model.User, error) {
	key := emailKey(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return model.User{}, model.ErrUserAlreadyExists
	}

	r.nextID++
	u.ID = r.nextID
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.byEmail[key] = u
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.byEmail[emailKey(email)]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.byEmail[emailKey(email)]
	return exists, nil
}

func (r *MemoryUserRepository) SetRefreshToken(_ context.Context, email string, token string) error {
	key := emailKey(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.byEmail[key]
	if !exists {
		return model.ErrUserNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now().UTC()
	r.byEmail[key] = u
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
