package users

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists identities. Lookups return common.ErrorNotFound when
// no row matches; Create returns common.ErrEmailTaken or
// common.ErrHandleTaken on a unique-field collision.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateRefreshToken(ctx context.Context, email string, token string) error
}
