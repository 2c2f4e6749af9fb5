package models

import "time"

// Task is a to-do item owned by UserName.
type Task struct {
	TaskID      string    `json:"task_id"`
	UserName    string    `json:"username"`
	Priority    string    `json:"task_priority"`
	Datetime    time.Time `json:"datetime"`
	Description string    `json:"task_description"`
	IsCompleted bool      `json:"is_completed"`
}

// TaskPatch is a partial update of a task. Nil fields are left unchanged.
// UserName is not updatable; when present it must name the caller.
type TaskPatch struct {
	TaskID      string
	UserName    *string
	Priority    *string
	Datetime    *time.Time
	Description *string
	IsCompleted *bool
}

// Empty reports whether the patch changes no field.
func (p TaskPatch) Empty() bool {
	return p.Priority == nil && p.Datetime == nil && p.Description == nil && p.IsCompleted == nil
}
