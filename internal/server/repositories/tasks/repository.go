package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists tasks. Every mutating call is scoped to an owner
// handle so a caller can never touch another user's rows.
type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, owner string) ([]models.Task, error)
	DeleteOne(ctx context.Context, owner string, taskID string) (int64, error)
	DeleteAllByOwner(ctx context.Context, owner string) (int64, error)
	Update(ctx context.Context, owner string, patch models.TaskPatch) (*models.Task, error)
}
