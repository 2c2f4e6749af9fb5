package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// TaskServiceInterface is what the task handlers need from
// services.TaskService.
type TaskServiceInterface interface {
	Add(ctx context.Context, actor string, task models.Task) error
	List(ctx context.Context, actor, username string) ([]models.Task, error)
	Delete(ctx context.Context, actor, username, taskID string) (int64, error)
	Update(ctx context.Context, actor string, patch models.TaskPatch) (*models.Task, error)
}

type TaskHandler struct {
	tasks TaskServiceInterface
}

func NewTaskHandler(tasks TaskServiceInterface) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// actor returns the gate-admitted username. Routes without the gate get a
// 401.
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrTokenRequired, "")
	}
	return username, ok
}

// AddTask handles POST /addTask.
func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	username, ok := actor(w, r)
	if !ok {
		return
	}

	var req addTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	if err := h.tasks.Add(r.Context(), username, req.toModel()); err != nil {
		writeError(w, err, "Task adding failed.")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Task added successfully."})
}

// GetTasks handles GET /getTasks?username=.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	username, ok := actor(w, r)
	if !ok {
		return
	}

	list, err := h.tasks.List(r.Context(), username, r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, err, "Failed to fetch tasks")
		return
	}

	writeJSON(w, http.StatusOK, tasksResponse{Message: "Task fetching successful.", Tasks: list})
}

// DeleteTask handles DELETE /deleteTask?username=&task_id=. Without task_id
// all of the user's tasks are removed.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	username, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	taskID := q.Get("task_id")

	if _, err := h.tasks.Delete(r.Context(), username, q.Get("username"), taskID); err != nil {
		writeError(w, err, "Failed to delete tasks")
		return
	}

	msg := "Task deleted successfully"
	if taskID == "" {
		msg = "All tasks deleted successfully"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// UpdateTask handles PUT /updateTask.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	username, ok := actor(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	task, err := h.tasks.Update(r.Context(), username, req.toPatch())
	if err != nil {
		writeError(w, err, "Failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, updateTaskResponse{Message: "Task updated successfully", Task: task})
}
