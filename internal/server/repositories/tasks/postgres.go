// Package tasks provides the task repository and its PostgreSQL
// implementation.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const taskColumns = `task_id, username, task_priority, datetime, task_description, is_completed`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) error {
	query :=
		`INSERT INTO tasks (` + taskColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		task.TaskID, task.UserName, task.Priority, task.Datetime, task.Description, task.IsCompleted,
	)
	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok && constraint == "tasks_pkey" {
			return common.ErrTaskExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE username = $1 ORDER BY datetime, record_id`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteOne(ctx context.Context, owner string, taskID string) (int64, error) {
	query := `DELETE FROM tasks WHERE task_id = $1 AND username = $2`
	return r.exec(ctx, query, taskID, owner)
}

func (r *PostgresRepository) DeleteAllByOwner(ctx context.Context, owner string) (int64, error) {
	query := `DELETE FROM tasks WHERE username = $1`
	return r.exec(ctx, query, owner)
}

// Update applies the non-nil fields of patch to the task owned by owner and
// returns the merged record. common.ErrorNotFound is returned when no row
// with that id belongs to owner.
func (r *PostgresRepository) Update(ctx context.Context, owner string, patch models.TaskPatch) (*models.Task, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Priority != nil {
		add("task_priority", *patch.Priority)
	}
	if patch.Datetime != nil {
		add("datetime", *patch.Datetime)
	}
	if patch.Description != nil {
		add("task_description", *patch.Description)
	}
	if patch.IsCompleted != nil {
		add("is_completed", *patch.IsCompleted)
	}
	if len(sets) == 0 {
		return nil, common.ErrValidation
	}

	args = append(args, patch.TaskID, owner)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE task_id = $%d AND username = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns,
	)

	var t models.Task
	if err := scanTask(r.db.QueryRowContext(ctx, query, args...), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &t, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner, t *models.Task) error {
	return s.Scan(&t.TaskID, &t.UserName, &t.Priority, &t.Datetime, &t.Description, &t.IsCompleted)
}
