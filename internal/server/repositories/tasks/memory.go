package tasks

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// MemoryRepository is an in-process Repository keyed by task id.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	order map[string]int64
	seq   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]models.Task),
		order: make(map[string]int64),
	}
}

func (r *MemoryRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.TaskID]; ok {
		return common.ErrTaskExists
	}
	r.seq++
	r.tasks[task.TaskID] = *task
	r.order[task.TaskID] = r.seq
	return nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, owner string) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Task, 0)
	for _, t := range r.tasks {
		if t.UserName == owner {
			result = append(result, t)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Datetime.Equal(result[j].Datetime) {
			return result[i].Datetime.Before(result[j].Datetime)
		}
		return r.order[result[i].TaskID] < r.order[result[j].TaskID]
	})

	return result, nil
}

func (r *MemoryRepository) DeleteOne(_ context.Context, owner string, taskID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok || t.UserName != owner {
		return 0, nil
	}
	r.remove(taskID)
	return 1, nil
}

func (r *MemoryRepository) DeleteAllByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tasks {
		if t.UserName == owner {
			r.remove(id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Update(_ context.Context, owner string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, common.ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[patch.TaskID]
	if !ok || t.UserName != owner {
		return nil, common.ErrorNotFound
	}

	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Datetime != nil {
		t.Datetime = *patch.Datetime
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.IsCompleted != nil {
		t.IsCompleted = *patch.IsCompleted
	}

	r.tasks[t.TaskID] = t
	return &t, nil
}

func (r *MemoryRepository) remove(id string) {
	delete(r.tasks, id)
	delete(r.order, id)
}
