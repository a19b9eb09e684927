package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/api/dto"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/Nabeerak/hackathon-todo/internal/domain/task"
	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// keepAliveInterval is how often an idle event stream emits a comment
// frame so proxies keep the connection open
const keepAliveInterval = 30 * time.Second

type TaskHandler struct {
	service task.Service
	hub     *events.Hub
}

func NewTaskHandler(service task.Service, hub *events.Hub) *TaskHandler {
	return &TaskHandler{service: service, hub: hub}
}

// CreateTask godoc
// @Summary Create a new task
// @Description Create a task for the authenticated user
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} task.Task "Task created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := task.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Priority != "" {
		input.Priority = task.TaskPriority(req.Priority)
	}

	created, err := h.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// GetTask godoc
// @Summary Get a task by ID
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} task.Task
// @Failure 404 {object} map[string]string "Task not found"
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	found, err := h.service.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": found})
}

// ListTasks godoc
// @Summary List tasks
// @Description List the authenticated user's tasks with optional filters
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param is_completed query bool false "Filter by completion"
// @Param priority query string false "Filter by priority" Enums(high, medium, low)
// @Param overdue query bool false "Only tasks past their due date"
// @Success 200 {object} dto.TaskListResponse
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var filter dto.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainFilter := task.TaskFilter{
		UserID:      userID,
		IsCompleted: filter.IsCompleted,
		Overdue:     filter.Overdue,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}
	if filter.Priority != "" {
		p := task.TaskPriority(filter.Priority)
		domainFilter.Priority = &p
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), domainFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.TaskListResponse{
		Tasks:      tasks,
		TotalCount: total,
		Page:       domainFilter.Page,
		PageSize:   domainFilter.PageSize,
	}})
}

// UpdateTask godoc
// @Summary Update a task
// @Description Apply a partial update to a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Param task body dto.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} task.Task
// @Failure 404 {object} map[string]string "Task not found"
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := task.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		p := task.TaskPriority(*req.Priority)
		input.Priority = &p
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), userID, id, input)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// CompleteTask godoc
// @Summary Mark a task complete
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 200 {object} task.Task
// @Failure 404 {object} map[string]string "Task not found"
// @Router /api/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	completed, err := h.service.CompleteTask(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": completed})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID" format(uuid)
// @Success 204 "Task deleted"
// @Failure 404 {object} map[string]string "Task not found"
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), userID, id); err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkDeleteTasks godoc
// @Summary Delete several tasks
// @Description Delete the listed tasks; ids belonging to other users are ignored
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Task ids to delete"
// @Success 200 {object} map[string]int64 "Number of tasks deleted"
// @Router /api/tasks/bulk-delete [post]
func (h *TaskHandler) BulkDeleteTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid task id %q", raw)})
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.service.DeleteTasks(c.Request.Context(), userID, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}

// StreamEvents godoc
// @Summary Subscribe to task events
// @Description Server-sent event stream of the user's task changes
// @Tags tasks
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Router /api/tasks/events [get]
func (h *TaskHandler) StreamEvents(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ch, cancel := h.hub.Subscribe(userID)
	defer cancel()

	middleware.SSESubscribers.Inc()
	defer middleware.SSESubscribers.Dec()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, payload)
			c.Writer.Flush()
		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		}
	}
}

func taskErrorStatus(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrTitleTooLong),
		errors.Is(err, task.ErrDescTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
