package users

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// MemoryRepository is an in-process Repository keyed by email. It enforces
// the same uniqueness rules as the users table.
type MemoryRepository struct {
	mu     sync.RWMutex
	byMail map[string]models.User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byMail: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byMail[user.Email]; ok {
		return common.ErrEmailTaken
	}
	for _, u := range r.byMail {
		if u.UserName == user.UserName {
			return common.ErrHandleTaken
		}
	}

	r.nextID++
	user.RecordID = r.nextID
	r.byMail[user.Email] = *user
	return nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byMail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.UserName == username })
}

func (r *MemoryRepository) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(u models.User) bool { return u.RefreshToken == token })
}

func (r *MemoryRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *MemoryRepository) UpdateRefreshToken(_ context.Context, email string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byMail[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	r.byMail[email] = u
	return nil
}

func (r *MemoryRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byMail {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}
