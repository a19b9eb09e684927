package dto

import (
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/task"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=500" example:"Buy milk"`
	Description string     `json:"description" binding:"max=2000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=high medium low" example:"medium"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest represents a partial task update; omitted fields are
// left unchanged
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=1,max=500"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Priority    *string    `json:"priority,omitempty" binding:"omitempty,oneof=high medium low"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskListFilter represents the query parameters for listing tasks
type TaskListFilter struct {
	IsCompleted *bool  `form:"is_completed"`
	Priority    string `form:"priority" binding:"omitempty,oneof=high medium low"`
	Overdue     bool   `form:"overdue"`
	Page        int    `form:"page" binding:"min=0"`
	PageSize    int    `form:"page_size" binding:"min=0,max=500"`
}

// BulkDeleteRequest represents the request body for deleting several tasks
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// TaskListResponse represents the paginated task list
type TaskListResponse struct {
	Tasks      []task.Task `json:"tasks"`
	TotalCount int64       `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}
