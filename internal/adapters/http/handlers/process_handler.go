package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/pagination"
	"lawdesk-api/internal/pkg/response"
)

// ProcessHandler handles case endpoints
type ProcessHandler struct {
	processService *services.ProcessService
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(processService *services.ProcessService) *ProcessHandler {
	return &ProcessHandler{processService: processService}
}

// Visible rejects requests on cases the caller may not see. It guards the
// nested task, payment and expense routes.
func (h *ProcessHandler) Visible(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if _, err := h.processService.Get(c.UserContext(), actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return c.Next()
}

// List handles listing cases
// @Summary List cases
// @Description Elevated users see every case, others only their own
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param workflow query string false "prospecting, consultative, administrative or judicial"
// @Param archived query bool false "Archived cases only (true) or active only (false)"
// @Param contact_id query int false "Client contact"
// @Param search query string false "Title"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /processes [get]
func (h *ProcessHandler) List(c *fiber.Ctx) error {
	contactID, err := queryID(c, "contact_id")
	if err != nil {
		return response.FromError(c, err)
	}
	input := services.ProcessListInput{
		Workflow:  c.Query("workflow"),
		Archived:  queryBool(c, "archived"),
		ContactID: contactID,
		Search:    c.Query("search"),
	}
	page := pagination.GetParams(c)

	processes, total, err := h.processService.List(c.UserContext(), actor(c), input, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return paginated(c, "Processes retrieved successfully", processes, page, total)
}

// Get handles getting a case
// @Summary Get case
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /processes/{id} [get]
func (h *ProcessHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	process, err := h.processService.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process retrieved successfully", process.ToResponse())
}

// Create handles creating a case
// @Summary Create case
// @Description The responsible lawyer defaults to the caller
// @Tags Processes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProcessInput true "Case data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /processes [post]
func (h *ProcessHandler) Create(c *fiber.Ctx) error {
	var input services.ProcessInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	process, err := h.processService.Create(c.UserContext(), actor(c), &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Process created successfully", process.ToResponse())
}

// Update handles updating a case
// @Summary Update case
// @Tags Processes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Param body body services.ProcessInput true "Case data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id} [put]
func (h *ProcessHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input services.ProcessInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	process, err := h.processService.Update(c.UserContext(), actor(c), id, &input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process updated successfully", process.ToResponse())
}

// Archive handles archiving a case
// @Summary Archive case
// @Description Archived cases reject every mutation until unarchived
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/archive [post]
func (h *ProcessHandler) Archive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	process, err := h.processService.Archive(c.UserContext(), actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process archived", process.ToResponse())
}

// Unarchive handles reopening a case
// @Summary Unarchive case
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /processes/{id}/unarchive [post]
func (h *ProcessHandler) Unarchive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	process, err := h.processService.Unarchive(c.UserContext(), actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process unarchived", process.ToResponse())
}

// Delete handles deleting a case
// @Summary Delete case
// @Description Soft deletes the case with its payments, expenses and tasks
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /processes/{id} [delete]
func (h *ProcessHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.processService.Delete(c.UserContext(), actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process deleted successfully", nil)
}

// History handles the audit trail of a case
// @Summary Case history
// @Tags Processes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Process ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /processes/{id}/history [get]
func (h *ProcessHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	entries, err := h.processService.History(c.UserContext(), actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "History retrieved successfully", entries)
}
