package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/response"
)

// TaskHandler handles the tasks of a case
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List handles listing the tasks of a case
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param status query string false "pending or done"
// @Success 200 {object} response.Response
// @Router /processes/{id}/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	tasks, err := h.taskService.List(c.UserContext(), processID, c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Tasks retrieved successfully", tasks)
}

// Create handles creating a task
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param body body services.TaskInput true "Task data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.TaskInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	task, err := h.taskService.Create(c.UserContext(), actor(c), processID, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Task created successfully", task)
}

// Complete handles marking a task done
// @Summary Complete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param taskId path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/tasks/{taskId}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return response.FromError(c, err)
	}

	task, err := h.taskService.Complete(c.UserContext(), actor(c), processID, taskID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Task completed", task)
}

// Delete handles deleting a task
// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param taskId path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /processes/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	processID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.taskService.Delete(c.UserContext(), processID, taskID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Task deleted successfully", nil)
}
