package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	taskOne = uuid.NewString()
	taskTwo = uuid.NewString()
	when    = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
)

// failingTasks fails every call.
type failingTasks struct{}

func (failingTasks) Create(context.Context, *models.Task) error { return errDB }
func (failingTasks) ListByOwner(context.Context, string) ([]models.Task, error) {
	return nil, errDB
}
func (failingTasks) DeleteOne(context.Context, string, string) (int64, error) { return 0, errDB }
func (failingTasks) DeleteAllByOwner(context.Context, string) (int64, error)  { return 0, errDB }
func (failingTasks) Update(context.Context, string, models.TaskPatch) (*models.Task, error) {
	return nil, errDB
}

func newTaskService(repo tasks.Repository) *TaskService {
	return NewTaskService(nil, &fakeRepoManager{tasks: repo}, logging.NewNop())
}

func task(id, owner string) models.Task {
	return models.Task{TaskID: id, UserName: owner, Priority: "high", Datetime: when, Description: "buy milk"}
}

func TestTaskService_Add(t *testing.T) {
	ctx := context.Background()
	repo := tasks.NewMemoryRepository()
	svc := newTaskService(repo)

	require.NoError(t, svc.Add(ctx, "annlee", task(taskOne, "annlee")))

	// ownership is checked before anything is stored
	assert.ErrorIs(t, svc.Add(ctx, "bobsmit", task(taskTwo, "annlee")), common.ErrOwnership)
	list, err := repo.ListByOwner(ctx, "annlee")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Add(ctx, "annlee", task(taskOne, "annlee")), common.ErrTaskExists)

	// ids are opaque client-chosen strings
	require.NoError(t, svc.Add(ctx, "annlee", task("t1", "annlee")))
	assert.ErrorIs(t, svc.Add(ctx, "bobsmit", task("t1", "annlee")), common.ErrOwnership)

	// a missing owner never matches the caller
	assert.ErrorIs(t, svc.Add(ctx, "annlee", task(taskTwo, "")), common.ErrOwnership)
	assert.ErrorIs(t, svc.Add(ctx, "annlee", models.Task{}), common.ErrOwnership)

	bad := []models.Task{
		task("", "annlee"),
		task("   ", "annlee"),
		task(strings.Repeat("x", maxTaskIDLen+1), "annlee"),
		{TaskID: taskTwo, UserName: "annlee"},
		{TaskID: taskTwo, UserName: "annlee", Datetime: when, Priority: "urgent!"},
	}
	for _, b := range bad {
		assert.ErrorIs(t, svc.Add(ctx, "annlee", b), common.ErrValidation, "%+v", b)
	}

	assert.ErrorIs(t, newTaskService(failingTasks{}).Add(ctx, "annlee", task(taskTwo, "annlee")), common.ErrorInternal)
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	repo := tasks.NewMemoryRepository()
	svc := newTaskService(repo)

	require.NoError(t, svc.Add(ctx, "annlee", task(taskOne, "annlee")))
	require.NoError(t, svc.Add(ctx, "bobsmit", task(taskTwo, "bobsmit")))

	got, err := svc.List(ctx, "annlee", "annlee")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, taskOne, got[0].TaskID)

	_, err = svc.List(ctx, "annlee", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.List(ctx, "annlee", "bobsmit")
	assert.ErrorIs(t, err, common.ErrOwnership)

	_, err = newTaskService(failingTasks{}).List(ctx, "annlee", "annlee")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := tasks.NewMemoryRepository()
	svc := newTaskService(repo)

	require.NoError(t, svc.Add(ctx, "annlee", task(taskOne, "annlee")))
	require.NoError(t, svc.Add(ctx, "annlee", task(taskTwo, "annlee")))

	_, err := svc.Delete(ctx, "annlee", "", taskOne)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Delete(ctx, "bobsmit", "annlee", taskOne)
	assert.ErrorIs(t, err, common.ErrOwnership)

	_, err = svc.Delete(ctx, "annlee", "annlee", strings.Repeat("x", maxTaskIDLen+1))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Delete(ctx, "annlee", "annlee", "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err := svc.Delete(ctx, "annlee", "annlee", taskOne)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Delete(ctx, "annlee", "annlee", taskOne)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	n, err = svc.Delete(ctx, "annlee", "annlee", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Delete(ctx, "annlee", "annlee", "")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = newTaskService(failingTasks{}).Delete(ctx, "annlee", "annlee", "")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	repo := tasks.NewMemoryRepository()
	svc := newTaskService(repo)
	require.NoError(t, svc.Add(ctx, "annlee", task(taskOne, "annlee")))

	done := true
	got, err := svc.Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne, IsCompleted: &done})
	require.NoError(t, err)
	assert.Equal(t, &models.Task{
		TaskID: taskOne, UserName: "annlee", Priority: "high", Datetime: when,
		Description: "buy milk", IsCompleted: true,
	}, got)

	_, err = svc.Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Update(ctx, "annlee", models.TaskPatch{IsCompleted: &done})
	assert.ErrorIs(t, err, common.ErrValidation)

	other := "bobsmit"
	_, err = svc.Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne, UserName: &other, IsCompleted: &done})
	assert.ErrorIs(t, err, common.ErrOwnership)

	// a foreign owner is rejected before the patch itself is looked at
	_, err = svc.Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne, UserName: &other})
	assert.ErrorIs(t, err, common.ErrOwnership)
	_, err = svc.Update(ctx, "annlee", models.TaskPatch{TaskID: "missing", UserName: &other})
	assert.ErrorIs(t, err, common.ErrOwnership)

	// another user's task is invisible rather than forbidden
	_, err = svc.Update(ctx, "bobsmit", models.TaskPatch{TaskID: taskOne, IsCompleted: &done})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	long := "urgent!"
	_, err = svc.Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne, Priority: &long})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = newTaskService(failingTasks{}).Update(ctx, "annlee", models.TaskPatch{TaskID: taskOne, IsCompleted: &done})
	assert.ErrorIs(t, err, common.ErrorInternal)
}
