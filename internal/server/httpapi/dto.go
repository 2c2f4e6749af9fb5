package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message     string            `json:"message"`
	AccessToken string            `json:"accessToken"`
	UserData    models.PublicUser `json:"userData"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokensBody struct {
	AccessToken string `json:"accessToken"`
}

type refreshResponse struct {
	Message string     `json:"message"`
	Tokens  tokensBody `json:"tokens"`
}

type addTaskRequest struct {
	TaskID      string    `json:"task_id"`
	UserName    string    `json:"username"`
	Priority    string    `json:"task_priority"`
	Datetime    time.Time `json:"datetime"`
	Description string    `json:"task_description"`
	IsCompleted bool      `json:"is_completed"`
}

func (r addTaskRequest) toModel() models.Task {
	return models.Task{
		TaskID:      r.TaskID,
		UserName:    r.UserName,
		Priority:    r.Priority,
		Datetime:    r.Datetime,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

// updateTaskRequest uses pointers so that absent fields stay unchanged.
type updateTaskRequest struct {
	TaskID      string     `json:"task_id"`
	UserName    *string    `json:"username"`
	Priority    *string    `json:"task_priority"`
	Datetime    *time.Time `json:"datetime"`
	Description *string    `json:"task_description"`
	IsCompleted *bool      `json:"is_completed"`
}

func (r updateTaskRequest) toPatch() models.TaskPatch {
	return models.TaskPatch{
		TaskID:      r.TaskID,
		UserName:    r.UserName,
		Priority:    r.Priority,
		Datetime:    r.Datetime,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
	}
}

type tasksResponse struct {
	Message string        `json:"message"`
	Tasks   []models.Task `json:"tasks"`
}

type updateTaskResponse struct {
	Message string       `json:"message"`
	Task    *models.Task `json:"task"`
}
