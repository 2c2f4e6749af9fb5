package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// Column widths of the tasks table.
const (
	maxTaskIDLen   = 64
	maxPriorityLen = 6
)

// TaskService manages to-do items. Every operation takes the authenticated
// actor and refuses to touch tasks owned by anyone else; the check happens
// before the store is called.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "tasks"),
	}
}

// Add stores a new task owned by actor. A missing owner is an ownership
// error, not a validation one.
func (s *TaskService) Add(ctx context.Context, actor string, task models.Task) error {
	if task.UserName != actor {
		return common.ErrOwnership
	}
	if err := validateTaskID(task.TaskID); err != nil {
		return err
	}
	if task.Datetime.IsZero() || utf8.RuneCountInString(task.Priority) > maxPriorityLen {
		return common.ErrValidation
	}

	if err := s.repomanager.Tasks(s.db).Create(ctx, &task); err != nil {
		if errors.Is(err, common.ErrTaskExists) {
			return err
		}
		s.log.Error(ctx, "task insert failed", "username", actor, "task_id", task.TaskID, "error", err)
		return common.ErrorInternal
	}

	return nil
}

// List returns the tasks of username, which must be actor.
func (s *TaskService) List(ctx context.Context, actor, username string) ([]models.Task, error) {
	if username == "" {
		return nil, common.ErrValidation
	}
	if username != actor {
		return nil, common.ErrOwnership
	}

	tasks, err := s.repomanager.Tasks(s.db).ListByOwner(ctx, actor)
	if err != nil {
		s.log.Error(ctx, "task list failed", "username", actor, "error", err)
		return nil, common.ErrorInternal
	}

	return tasks, nil
}

// Delete removes one task when taskID is set, otherwise all of actor's
// tasks. It returns the number of rows removed, or common.ErrorNotFound
// when nothing matched.
func (s *TaskService) Delete(ctx context.Context, actor, username, taskID string) (int64, error) {
	if username == "" {
		return 0, common.ErrValidation
	}
	if username != actor {
		return 0, common.ErrOwnership
	}

	repo := s.repomanager.Tasks(s.db)

	var (
		n   int64
		err error
	)
	if taskID != "" {
		if err := validateTaskID(taskID); err != nil {
			return 0, err
		}
		n, err = repo.DeleteOne(ctx, actor, taskID)
	} else {
		n, err = repo.DeleteAllByOwner(ctx, actor)
	}
	if err != nil {
		s.log.Error(ctx, "task delete failed", "username", actor, "task_id", taskID, "error", err)
		return 0, common.ErrorInternal
	}
	if n == 0 {
		return 0, common.ErrorNotFound
	}

	return n, nil
}

// Update applies patch to one of actor's tasks and returns the merged
// record.
func (s *TaskService) Update(ctx context.Context, actor string, patch models.TaskPatch) (*models.Task, error) {
	if patch.UserName != nil && *patch.UserName != actor {
		return nil, common.ErrOwnership
	}
	if patch.Empty() {
		return nil, common.ErrValidation
	}
	if err := validateTaskID(patch.TaskID); err != nil {
		return nil, err
	}
	if patch.Priority != nil && utf8.RuneCountInString(*patch.Priority) > maxPriorityLen {
		return nil, common.ErrValidation
	}
	if patch.Datetime != nil && patch.Datetime.IsZero() {
		return nil, common.ErrValidation
	}

	task, err := s.repomanager.Tasks(s.db).Update(ctx, actor, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.log.Error(ctx, "task update failed", "username", actor, "task_id", patch.TaskID, "error", err)
		return nil, common.ErrorInternal
	}

	return task, nil
}

// validateTaskID accepts any non-empty client-chosen id that fits the column.
func validateTaskID(id string) error {
	if strings.TrimSpace(id) == "" || utf8.RuneCountInString(id) > maxTaskIDLen {
		return common.ErrValidation
	}
	return nil
}
